package reporting

import (
	"fmt"
	"strings"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/lamports"
)

// RenderText renders the report as the terminal summary format.
func RenderText(report *Report) string {
	var sb strings.Builder

	sb.WriteString("---- Detection Summary ----\n")
	fmt.Fprintf(&sb, "Mint: %s\n", report.Mint)
	fmt.Fprintf(&sb, "Generated: %s\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "Total trades parsed: %d\n", report.TotalTrades)
	fmt.Fprintf(&sb, "Wide front-run candidates: %d\n", report.FrontRunCount())
	fmt.Fprintf(&sb, "Wide back-run candidates: %d\n", report.BackRunCount())
	fmt.Fprintf(&sb, "Wide sandwich candidates: %d\n", report.SandwichCount())

	if len(report.FrontRuns) > 0 {
		sb.WriteString("\n-- Front-run Events --\n")
		for idx, event := range report.FrontRuns {
			writeVictimLine(&sb, idx, event.Victim)
			for legIdx, fr := range event.FrontRuns {
				writeLegLine(&sb, "FR", legIdx, fr)
			}
		}
	}

	if len(report.BackRuns) > 0 {
		sb.WriteString("\n-- Back-run Events --\n")
		for idx, event := range report.BackRuns {
			writeVictimLine(&sb, idx, event.Victim)
			for legIdx, br := range event.BackRuns {
				writeLegLine(&sb, "BR", legIdx, br)
			}
		}
	}

	if len(report.Sandwiches) > 0 {
		sb.WriteString("\n-- Sandwich Events --\n")
		for idx, det := range report.Sandwiches {
			writeVictimLine(&sb, idx, det.Victim)
			fmt.Fprintf(&sb, "Frontruns: %d\n", len(det.FrontRuns))
			fmt.Fprintf(&sb, "Backruns: %d\n", len(det.BackRuns))
			fmt.Fprintf(&sb, "Profit (SOL): %.6f, net tokens %d\n",
				lamports.AbsSOL(det.NetProfitSol), det.NetTokenDelta)
			for legIdx, fr := range det.FrontRuns {
				writeLegLine(&sb, "FR", legIdx, fr)
			}
			for legIdx, br := range det.BackRuns {
				writeLegLine(&sb, "BR", legIdx, br)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func writeVictimLine(sb *strings.Builder, idx int, victim *domain.TradeFact) {
	fmt.Fprintf(sb, "#%02d Victim %s | slot %d | %s | ΔSOL %+.4f SOL | Δtoken %d | Wanted: %d tokens (SOL limit %d)\n",
		idx+1,
		ShortSig(victim.Signature),
		victim.Slot,
		tradeBadge(victim.Side),
		lamports.ToSOL(victim.SolChange),
		victim.TokenChange,
		victim.TokenRequested,
		victim.SolLimit,
	)
	fmt.Fprintf(sb, "Impact:%s\n", formatAttackImpact(victim))
}

func writeLegLine(sb *strings.Builder, tag string, legIdx int, leg *domain.TradeFact) {
	fmt.Fprintf(sb, "%s%02d [%s] slot %d signer %s | ΔSOL %+.4f SOL | Δtoken %d\n",
		tag,
		legIdx+1,
		tradeBadge(leg.Side),
		leg.Slot,
		ShortSig(leg.Signer),
		lamports.ToSOL(leg.SolChange),
		leg.TokenChange,
	)
}

// ShortSig abbreviates a signature or address to its 4-character head
// and tail.
func ShortSig(sig string) string {
	if len(sig) <= 8 {
		return sig
	}
	return fmt.Sprintf("%s…%s", sig[:4], sig[len(sig)-4:])
}

func tradeBadge(side domain.TradeSide) string {
	if side == domain.SideBuy {
		return "BUY"
	}
	return "SELL"
}

// formatAttackImpact describes how the trade's outcome fell short of
// its declared limits, or reports a fair execution.
func formatAttackImpact(tx *domain.TradeFact) string {
	var impact strings.Builder

	switch tx.Side {
	case domain.SideBuy:
		spent := lamports.Negative(tx.SolChange)
		received := lamports.Positive(tx.TokenChange)

		if spent > tx.SolLimit {
			overpaid := spent - tx.SolLimit
			fmt.Fprintf(&impact, "OVERPAID %.6f SOL", float64(overpaid)/lamports.PerSOL)
		}
		if received < tx.TokenRequested {
			fmt.Fprintf(&impact, "GOT %d FEWER TOKENS", tx.TokenRequested-received)
		}
	default:
		received := lamports.Positive(tx.SolChange)
		sold := lamports.Negative(tx.TokenChange)

		if received < tx.SolLimit {
			underpaid := tx.SolLimit - received
			fmt.Fprintf(&impact, "RECEIVED %.6f SOL LESS", float64(underpaid)/lamports.PerSOL)
		}
		if sold > tx.TokenRequested {
			fmt.Fprintf(&impact, "SOLD %d MORE TOKENS", sold-tx.TokenRequested)
		}
	}

	if impact.Len() == 0 {
		return "FAIR EXECUTION"
	}
	return impact.String()
}
