package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"solana-sandwich-lab/internal/amm"
	"solana-sandwich-lab/internal/lamports"
	"solana-sandwich-lab/internal/observability"
	"solana-sandwich-lab/internal/simulation"
	"solana-sandwich-lab/internal/storage/migrations"
	pgstore "solana-sandwich-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	victimSol := flag.Float64("victim-sol", 0, "Hypothetical victim buy in SOL (prompts when omitted)")
	frontBps := flag.Uint64("front-bps", simulation.DefaultParams(0).FrontFractionBps, "Front-run size as basis points of the victim buy")
	baseSlot := flag.Uint64("base-slot", simulation.DefaultParams(0).BaseSlot, "Slot labeling the replayed sequence")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string to persist the scenario run")
	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	solIn := *victimSol
	if solIn == 0 {
		var err error
		solIn, err = promptVictimSol()
		if err != nil {
			logger.Fatalf("Reading victim SOL input: %v", err)
		}
	}
	if solIn <= 0 {
		logger.Fatal("Victim SOL input must be positive")
	}

	ctx := context.Background()

	opts := simulation.RunnerOptions{}
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connecting to PostgreSQL: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Running migrations: %v", err)
		}
		opts.ScenarioStore = pgstore.NewScenarioStore(pool)
	}

	runner := simulation.NewRunner(opts)
	params := simulation.Params{
		VictimSolIn:      uint64(solIn * lamports.PerSOL),
		FrontFractionBps: *frontBps,
		BaseSlot:         *baseSlot,
	}

	result, err := runner.Run(ctx, params)
	if err != nil {
		logger.Fatalf("Running scenario: %v", err)
	}
	observability.RecordScenarioSimulated()

	fmt.Printf("Hypothetical Victim TX: Buy with %.3f SOL, min tokens %d\n",
		lamports.ToSOL(int64(result.VictimSolIn)), result.VictimMinTokens/amm.TokenDecimals)

	fmt.Printf("\nBaseline (No Attack): Tokens %d (%.0f with dec) for %.3f SOL\n",
		result.BaselineTokensOut,
		float64(result.BaselineTokensOut)/amm.TokenDecimals,
		lamports.ToSOL(int64(result.VictimSolIn)))

	fmt.Printf("\nSlot n (%d): Bot Front-run Buy: Tokens %.6f for %.3f SOL\n",
		params.BaseSlot,
		float64(result.FrontRunTokensOut)/amm.TokenDecimals,
		lamports.ToSOL(int64(result.FrontRunSolIn)))

	fmt.Printf("\nSlot n+1 (%d): Victim Buy: Tokens %.6f for %.3f SOL\n",
		params.BaseSlot+1,
		float64(result.VictimTokensOut)/amm.TokenDecimals,
		lamports.ToSOL(int64(result.VictimSolIn)))
	fmt.Printf("Extracted Value: %.6f SOL\n", lamports.ToSOL(int64(result.ExtractedLamports)))

	labels := []string{"Break Even", "Profit"}
	for i, stage := range result.BackRuns {
		label := "Profit"
		if i < len(labels) {
			label = labels[i]
		}
		fmt.Printf("\nSlot n+%d (%d): Back-run %d (%s): Sell %.6f tokens, Received %.6f SOL (Net: %.6f)\n",
			i+2,
			params.BaseSlot+uint64(i)+2,
			i+1,
			label,
			float64(stage.TokensSold)/amm.TokenDecimals,
			lamports.ToSOL(int64(stage.SolReceived)),
			lamports.ToSOL(stage.NetLamports))
		fmt.Printf("Price after back-run %d: %.12f SOL/token\n", i+1, stage.PriceAfter)
	}

	fmt.Printf("\nBot Total Net Profit: %.6f SOL\n", lamports.ToSOL(result.AttackerNetLamports))

	if opts.ScenarioStore != nil {
		logger.Printf("Scenario run %s persisted", result.RunID)
	}
}

// promptVictimSol reads the victim buy size from stdin.
func promptVictimSol() (float64, error) {
	fmt.Print("Enter hypothetical victim SOL input (e.g., 1 for 1 SOL): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(line), 64)
}
