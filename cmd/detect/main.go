package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-sandwich-lab/internal/detector"
	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/idhash"
	"solana-sandwich-lab/internal/ingestion"
	"solana-sandwich-lab/internal/observability"
	"solana-sandwich-lab/internal/reporting"
	"solana-sandwich-lab/internal/solana"
	"solana-sandwich-lab/internal/storage"
	chstore "solana-sandwich-lab/internal/storage/clickhouse"
	"solana-sandwich-lab/internal/storage/migrations"
	pgstore "solana-sandwich-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	rpcURL := flag.String("rpc-url", "", "Solana RPC HTTP endpoint (default: Helius via HELIUS_API_KEY)")
	limit := flag.Int("limit", ingestion.DefaultPageLimit, "Number of recent signatures to analyze")
	workers := flag.Int("workers", ingestion.DefaultWorkers, "Concurrent transaction fetches")
	maxSlotGap := flag.Uint64("max-slot-gap", detector.DefaultConfig().MaxSlotGap, "Slot distance searched around a victim")
	minVictimSOL := flag.Float64("min-victim-sol", detector.DefaultConfig().MinVictimAbsSOL, "Minimum absolute victim SOL magnitude")
	minVictimToken := flag.Float64("min-victim-token", detector.DefaultConfig().MinVictimAbsToken, "Minimum absolute victim token magnitude")
	minProfit := flag.Int64("min-profit-lamports", detector.DefaultConfig().MinProfitLamports, "Minimum aggregate leg profit for a sandwich")
	minBotTrades := flag.Int("min-bot-trades", detector.DefaultConfig().MinBotTrades, "Trades by one signer required to label it a bot")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string to persist facts and detections")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string to archive facts")
	csvPath := flag.String("csv", "", "Write detection records as CSV to this file")
	useFixtures := flag.Bool("use-fixtures", false, "Analyze a built-in demo batch instead of the ledger")
	flag.Parse()

	logger := log.New(os.Stderr, "[detect] ", log.LstdFlags)
	ctx := context.Background()

	var mint string
	var facts []*domain.TradeFact

	if *useFixtures {
		mint = fixtureMint
		facts = fixtureTrades()
		logger.Printf("Using %d fixture trades for mint %s", len(facts), mint)
	} else {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: detect [flags] <mint-address>")
			os.Exit(1)
		}
		mint = flag.Arg(0)
		if !solana.IsValidPubkey(mint) {
			logger.Fatalf("Invalid mint address: %s", mint)
		}

		endpoint := resolveEndpoint(*rpcURL)
		if endpoint == "" {
			logger.Fatal("No RPC endpoint: set --rpc-url, SOLANA_RPC_URL or HELIUS_API_KEY")
		}

		rpc := solana.NewHTTPClient(endpoint)
		runner := ingestion.NewRunner(ingestion.RunnerOptions{
			RPC:       rpc,
			PageLimit: *limit,
			Workers:   *workers,
			Logger:    logger,
		})

		logger.Printf("Fetching up to %d signatures for mint %s...", *limit, mint)
		batch, err := runner.FetchBatch(ctx, mint)
		if err != nil {
			logger.Fatalf("Fetching trades: %v", err)
		}
		logger.Printf("Parsed %d pump.fun trades from %d signatures", len(batch.Facts), batch.SignaturesSeen)
		facts = batch.Facts
	}

	cfg := detector.Config{
		MaxSlotGap:        *maxSlotGap,
		MinVictimAbsSOL:   *minVictimSOL,
		MinVictimAbsToken: *minVictimToken,
		MinProfitLamports: *minProfit,
		MinBotTrades:      *minBotTrades,
	}

	start := time.Now()
	summary := detector.Detect(facts, cfg)
	observability.RecordDetectionRun(len(facts), time.Since(start).Seconds())

	report := reporting.NewGenerator().Generate(mint, len(facts), summary)
	fmt.Print(reporting.RenderText(report))

	records := buildDetectionRecords(mint, summary)
	for _, record := range records {
		observability.RecordDetection(string(record.Kind))
	}

	if *csvPath != "" {
		if err := os.WriteFile(*csvPath, []byte(reporting.RenderCSV(records)), 0o644); err != nil {
			logger.Fatalf("Writing CSV: %v", err)
		}
		logger.Printf("Wrote %d detection records to %s", len(records), *csvPath)
	}

	if *postgresDSN != "" {
		if err := persistPostgres(ctx, *postgresDSN, facts, records); err != nil {
			logger.Fatalf("Persisting to PostgreSQL: %v", err)
		}
		logger.Printf("Persisted %d facts and %d detections to PostgreSQL", len(facts), len(records))
	}

	if *clickhouseDSN != "" {
		if err := archiveClickhouse(ctx, *clickhouseDSN, facts); err != nil {
			logger.Fatalf("Archiving to ClickHouse: %v", err)
		}
		logger.Printf("Archived %d facts to ClickHouse", len(facts))
	}
}

// resolveEndpoint picks the RPC endpoint: explicit flag, SOLANA_RPC_URL,
// then the Helius gateway keyed by HELIUS_API_KEY.
func resolveEndpoint(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if url := os.Getenv("SOLANA_RPC_URL"); url != "" {
		return url
	}
	if key := os.Getenv("HELIUS_API_KEY"); key != "" {
		return fmt.Sprintf("https://mainnet.helius-rpc.com/?api-key=%s", key)
	}
	return ""
}

// buildDetectionRecords flattens a summary into persistable records with
// deterministic IDs.
func buildDetectionRecords(mint string, summary *domain.DetectionSummary) []*domain.DetectionRecord {
	var records []*domain.DetectionRecord

	for _, event := range summary.FrontRuns {
		records = append(records, &domain.DetectionRecord{
			DetectionID:        idhash.ComputeDetectionID(string(domain.KindFrontRun), mint, event.Victim.Signature, event.Victim.Slot),
			Kind:               domain.KindFrontRun,
			Mint:               mint,
			VictimSignature:    event.Victim.Signature,
			VictimSlot:         event.Victim.Slot,
			FrontRunSignatures: signatures(event.FrontRuns),
		})
	}

	for _, event := range summary.BackRuns {
		records = append(records, &domain.DetectionRecord{
			DetectionID:       idhash.ComputeDetectionID(string(domain.KindBackRun), mint, event.Victim.Signature, event.Victim.Slot),
			Kind:              domain.KindBackRun,
			Mint:              mint,
			VictimSignature:   event.Victim.Signature,
			VictimSlot:        event.Victim.Slot,
			BackRunSignatures: signatures(event.BackRuns),
		})
	}

	for _, det := range summary.Sandwiches {
		records = append(records, &domain.DetectionRecord{
			DetectionID:        idhash.ComputeDetectionID(string(domain.KindSandwich), mint, det.Victim.Signature, det.Victim.Slot),
			Kind:               domain.KindSandwich,
			Mint:               mint,
			VictimSignature:    det.Victim.Signature,
			VictimSlot:         det.Victim.Slot,
			FrontRunSignatures: signatures(det.FrontRuns),
			BackRunSignatures:  signatures(det.BackRuns),
			NetProfitSol:       det.NetProfitSol,
			NetTokenDelta:      det.NetTokenDelta,
		})
	}

	return records
}

func signatures(facts []*domain.TradeFact) []string {
	sigs := make([]string, len(facts))
	for i, fact := range facts {
		sigs[i] = fact.Signature
	}
	return sigs
}

// persistPostgres stores the batch and detection records, tolerating
// duplicates from earlier runs over the same signature page.
func persistPostgres(ctx context.Context, dsn string, facts []*domain.TradeFact, records []*domain.DetectionRecord) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}

	factStore := pgstore.NewTradeFactStore(pool)
	for _, fact := range facts {
		if err := factStore.Insert(ctx, fact); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
	}

	detectionStore := pgstore.NewDetectionStore(pool)
	for _, record := range records {
		if err := detectionStore.Insert(ctx, record); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
	}

	return nil
}

// archiveClickhouse mirrors the fact batch into the analytical archive.
func archiveClickhouse(ctx context.Context, dsn string, facts []*domain.TradeFact) error {
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := chstore.NewTradeFactStore(conn)
	if err := store.InsertBulk(ctx, facts); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return err
	}
	return nil
}
