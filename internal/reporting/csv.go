package reporting

import (
	"fmt"
	"strings"

	"solana-sandwich-lab/internal/domain"
)

// RenderCSV renders detection records as CSV string.
func RenderCSV(records []*domain.DetectionRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("detection_id,kind,mint,victim_signature,victim_slot,")
	sb.WriteString("front_run_count,back_run_count,net_profit_sol,net_token_delta\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%d,%d,%d,%d\n",
			r.DetectionID,
			r.Kind,
			r.Mint,
			r.VictimSignature,
			r.VictimSlot,
			len(r.FrontRunSignatures),
			len(r.BackRunSignatures),
			r.NetProfitSol,
			r.NetTokenDelta,
		))
	}

	return sb.String()
}
