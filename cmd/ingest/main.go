package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/ingestion"
	"solana-sandwich-lab/internal/observability"
	"solana-sandwich-lab/internal/solana"
	"solana-sandwich-lab/internal/storage"
	chstore "solana-sandwich-lab/internal/storage/clickhouse"
	"solana-sandwich-lab/internal/storage/memory"
	"solana-sandwich-lab/internal/storage/migrations"
	pgstore "solana-sandwich-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "live", "Ingestion mode: live (WebSocket discovery) or batch (signature page polling)")
	rpcURL := flag.String("rpc-url", "", "Solana RPC HTTP endpoint (default: Helius via HELIUS_API_KEY)")
	wsURL := flag.String("ws-url", "", "Solana WebSocket endpoint (default: derived from the RPC endpoint)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of a database")
	pollInterval := flag.Duration("poll-interval", 30*time.Second, "Signature page polling interval in batch mode")
	pageLimit := flag.Int("page-limit", ingestion.DefaultPageLimit, "Signatures per batch fetch")
	slotLag := flag.Uint64("slot-lag", 5, "Slots to buffer before releasing facts in live mode")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ingest [flags] <mint-address>")
		os.Exit(1)
	}
	mint := flag.Arg(0)
	if !solana.IsValidPubkey(mint) {
		logger.Fatalf("Invalid mint address: %s", mint)
	}

	endpoint := resolveEndpoint(*rpcURL)
	if endpoint == "" {
		logger.Fatal("No RPC endpoint: set --rpc-url, SOLANA_RPC_URL or HELIUS_API_KEY")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	store, cleanup, err := buildStore(ctx, *useMemory, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Setting up storage: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(endpoint)

	switch *mode {
	case "live":
		err = runLive(ctx, logger, rpc, store, endpoint, *wsURL, mint, *slotLag)
	case "batch":
		err = runBatch(ctx, logger, rpc, store, mint, *pageLimit, *pollInterval)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Ingestion failed: %v", err)
	}
	logger.Println("Ingestion stopped")
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

// deriveWSEndpoint swaps the HTTP scheme for the WebSocket one.
func deriveWSEndpoint(rpcEndpoint string) string {
	if strings.HasPrefix(rpcEndpoint, "https://") {
		return "wss://" + strings.TrimPrefix(rpcEndpoint, "https://")
	}
	if strings.HasPrefix(rpcEndpoint, "http://") {
		return "ws://" + strings.TrimPrefix(rpcEndpoint, "http://")
	}
	return rpcEndpoint
}

// buildStore assembles the trade-fact store for the selected backends.
// Postgres and ClickHouse may be combined; facts then fan out to both.
func buildStore(ctx context.Context, useMemory bool, postgresDSN, clickhouseDSN string) (storage.TradeFactStore, func(), error) {
	if useMemory {
		return memory.NewTradeFactStore(), func() {}, nil
	}

	var stores []storage.TradeFactStore
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, cleanup, err
		}
		stores = append(stores, pgstore.NewTradeFactStore(pool))
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { conn.Close() })
		stores = append(stores, chstore.NewTradeFactStore(conn))
	}

	switch len(stores) {
	case 0:
		return nil, cleanup, errors.New("no storage configured: set --postgres-dsn, --clickhouse-dsn or --use-memory")
	case 1:
		return stores[0], cleanup, nil
	default:
		return &teeStore{stores: stores}, cleanup, nil
	}
}

func runLive(ctx context.Context, logger *log.Logger, rpc solana.RPCClient, store storage.TradeFactStore, endpoint, wsEndpoint, mint string, slotLag uint64) error {
	if wsEndpoint == "" {
		wsEndpoint = deriveWSEndpoint(endpoint)
	}

	ws, err := solana.NewWSClient(ctx, wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer ws.Close()

	runner := ingestion.NewLiveRunner(ingestion.LiveRunnerOptions{
		WS:            ws,
		RPC:           rpc,
		Store:         store,
		Mint:          mint,
		SlotLagWindow: slotLag,
		Logger:        logger,
	})

	logger.Printf("Live ingestion for mint %s via %s", mint, wsEndpoint)
	return runner.Run(ctx)
}

func runBatch(ctx context.Context, logger *log.Logger, rpc solana.RPCClient, store storage.TradeFactStore, mint string, pageLimit int, pollInterval time.Duration) error {
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		RPC:       rpc,
		Store:     store,
		PageLimit: pageLimit,
		Logger:    logger,
	})

	logger.Printf("Batch ingestion for mint %s every %v", mint, pollInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := runner.FetchBatch(ctx, mint)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Printf("Batch fetch failed: %v", err)
		} else {
			logger.Printf("Batch: %d signatures, %d trades, %d stored, %d skipped",
				result.SignaturesSeen, len(result.Facts), result.Stored, result.Skipped)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// teeStore fans writes out to every backend. Reads are served by the
// first backend, which carries the canonical copy.
type teeStore struct {
	stores []storage.TradeFactStore
}

func (t *teeStore) Insert(ctx context.Context, fact *domain.TradeFact) error {
	for _, s := range t.stores {
		if err := s.Insert(ctx, fact); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
	}
	return nil
}

func (t *teeStore) InsertBulk(ctx context.Context, facts []*domain.TradeFact) error {
	for _, s := range t.stores {
		if err := s.InsertBulk(ctx, facts); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
	}
	return nil
}

func (t *teeStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeFact, error) {
	return t.stores[0].GetByMint(ctx, mint)
}

func (t *teeStore) GetBySlotRange(ctx context.Context, mint string, startSlot, endSlot uint64) ([]*domain.TradeFact, error) {
	return t.stores[0].GetBySlotRange(ctx, mint, startSlot, endSlot)
}

var _ storage.TradeFactStore = (*teeStore)(nil)
