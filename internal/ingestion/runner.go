// Package ingestion pulls trade history for a mint off the ledger and
// turns it into ordered trade-fact batches.
package ingestion

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/observability"
	"solana-sandwich-lab/internal/ordering"
	"solana-sandwich-lab/internal/pumpfun"
	"solana-sandwich-lab/internal/solana"
	"solana-sandwich-lab/internal/storage"
)

// Default configuration values.
const (
	DefaultPageLimit = 50
	DefaultWorkers   = 8
)

// Runner fetches a bounded signature page for a mint, retrieves the
// transactions concurrently, decodes them and returns the ordered
// trade-fact batch.
type Runner struct {
	rpc       solana.RPCClient
	parser    *pumpfun.Parser
	store     storage.TradeFactStore
	pageLimit int
	workers   int
	logger    *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	RPC       solana.RPCClient
	Parser    *pumpfun.Parser // Default: pumpfun.NewParser()
	Store     storage.TradeFactStore
	PageLimit int // Default: 50 signatures per batch
	Workers   int // Default: 8 concurrent transaction fetches
	Logger    *log.Logger
}

// NewRunner creates a new batch ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	parser := opts.Parser
	if parser == nil {
		parser = pumpfun.NewParser()
	}

	pageLimit := opts.PageLimit
	if pageLimit == 0 {
		pageLimit = DefaultPageLimit
	}

	workers := opts.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		rpc:       opts.RPC,
		parser:    parser,
		store:     opts.Store,
		pageLimit: pageLimit,
		workers:   workers,
		logger:    logger,
	}
}

// BatchResult contains statistics from one batch fetch.
type BatchResult struct {
	Mint           string
	Facts          []*domain.TradeFact // ordered by (slot ASC, signature ASC)
	SignaturesSeen int
	Fetched        int
	Skipped        int
	Stored         int
}

// FetchBatch retrieves the most recent signature page for mint, fetches
// each transaction concurrently and decodes the trades. Transactions
// that fail to fetch or decode are counted and skipped, never fatal.
// When a store is configured the ordered batch is persisted, tolerating
// duplicates from earlier runs.
func (r *Runner) FetchBatch(ctx context.Context, mint string) (*BatchResult, error) {
	start := time.Now()
	sigs, err := r.rpc.GetSignaturesForAddress(ctx, mint, &solana.SignaturesOpts{Limit: r.pageLimit})
	observability.RecordRPCLatency("getSignaturesForAddress", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Mint: mint, SignaturesSeen: len(sigs)}

	// Failed transactions moved no balances and cannot be trades.
	var pending []string
	for _, sig := range sigs {
		if sig.Err != nil {
			result.Skipped++
			observability.RecordTransactionSkipped("failed_transaction")
			continue
		}
		pending = append(pending, sig.Signature)
	}

	facts := r.fetchAndDecode(ctx, mint, pending, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordering.Sort(facts)
	result.Facts = facts

	if len(facts) > 0 {
		observability.UpdateHighestSlot(facts[len(facts)-1].Slot)
	}

	if r.store != nil {
		stored, err := r.persist(ctx, facts)
		result.Stored = stored
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// fetchAndDecode runs the worker pool over the pending signatures.
// Counters in result are updated under mu together with the fact slice.
func (r *Runner) fetchAndDecode(ctx context.Context, mint string, pending []string, result *BatchResult) []*domain.TradeFact {
	jobs := make(chan string)
	var mu sync.Mutex
	var facts []*domain.TradeFact
	var wg sync.WaitGroup

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sig := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fact, outcome := r.fetchOne(ctx, mint, sig)

				mu.Lock()
				switch outcome {
				case outcomeDecoded:
					result.Fetched++
					facts = append(facts, fact)
				case outcomeNotATrade:
					result.Fetched++
					result.Skipped++
				default:
					result.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, sig := range pending {
		select {
		case jobs <- sig:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return facts
		}
	}
	close(jobs)
	wg.Wait()

	return facts
}

type fetchOutcome int

const (
	outcomeDecoded fetchOutcome = iota
	outcomeNotATrade
	outcomeError
)

// fetchOne retrieves and decodes a single transaction.
func (r *Runner) fetchOne(ctx context.Context, mint, sig string) (*domain.TradeFact, fetchOutcome) {
	return fetchTradeFact(ctx, r.rpc, r.parser, r.logger, mint, sig)
}

// fetchTradeFact retrieves one transaction and decodes zero-or-one
// trade fact from it. Shared by the batch and live runners.
func fetchTradeFact(ctx context.Context, rpc solana.RPCClient, parser *pumpfun.Parser, logger *log.Logger, mint, sig string) (*domain.TradeFact, fetchOutcome) {
	start := time.Now()
	tx, err := rpc.GetTransaction(ctx, sig)
	observability.RecordRPCLatency("getTransaction", time.Since(start).Seconds())
	if err != nil {
		logger.Printf("Error fetching transaction %s: %v", sig, err)
		observability.RecordTransactionSkipped("fetch_error")
		return nil, outcomeError
	}
	if tx == nil {
		observability.RecordTransactionSkipped("unknown_transaction")
		return nil, outcomeError
	}
	observability.RecordTransactionFetched()

	fact := parser.ParseTransaction(tx, sig, mint)
	if fact == nil {
		observability.RecordTransactionSkipped("not_a_trade")
		return nil, outcomeNotATrade
	}
	observability.RecordTradeDecoded()
	return fact, outcomeDecoded
}

// persist writes the batch to the store one fact at a time so a
// duplicate from an earlier run never blocks the rest of the batch.
func (r *Runner) persist(ctx context.Context, facts []*domain.TradeFact) (int, error) {
	stored := 0
	for _, fact := range facts {
		start := time.Now()
		err := r.store.Insert(ctx, fact)
		observability.RecordDBQuery("store", "insert_trade_fact", time.Since(start).Seconds(), err)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return stored, err
		}
		stored++
	}
	observability.RecordFactsStored(stored)
	return stored, nil
}
