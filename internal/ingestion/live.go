package ingestion

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/observability"
	"solana-sandwich-lab/internal/ordering"
	"solana-sandwich-lab/internal/pumpfun"
	"solana-sandwich-lab/internal/solana"
	"solana-sandwich-lab/internal/storage"
)

// LiveRunner ingests trades for one mint continuously: a logsSubscribe
// stream discovers signatures, each transaction is fetched and decoded,
// and facts are released to the store in canonical order once their
// slot falls behind the stream by the lag window.
type LiveRunner struct {
	ws            solana.WSClient
	rpc           solana.RPCClient
	parser        *pumpfun.Parser
	store         storage.TradeFactStore
	mint          string
	slotLagWindow uint64        // Number of slots to buffer for ordering
	flushInterval time.Duration // Interval for periodic buffer flush
	logger        *log.Logger

	// Slot-based buffer for deterministic ordering. Facts are grouped
	// by slot and released when the slot is finalized.
	buffer      map[uint64][]*domain.TradeFact
	highestSlot uint64
}

// LiveRunnerOptions contains configuration for creating a LiveRunner.
type LiveRunnerOptions struct {
	WS            solana.WSClient
	RPC           solana.RPCClient
	Parser        *pumpfun.Parser // Default: pumpfun.NewParser()
	Store         storage.TradeFactStore
	Mint          string
	SlotLagWindow uint64        // Default: 5 slots - wait this many slots before releasing
	FlushInterval time.Duration // Default: 5s - force flush buffered facts periodically
	Logger        *log.Logger
}

// NewLiveRunner creates a new live ingestion runner.
func NewLiveRunner(opts LiveRunnerOptions) *LiveRunner {
	parser := opts.Parser
	if parser == nil {
		parser = pumpfun.NewParser()
	}

	slotLagWindow := opts.SlotLagWindow
	if slotLagWindow == 0 {
		slotLagWindow = 5 // Wait 5 slots (~2 seconds) for ordering
	}

	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &LiveRunner{
		ws:            opts.WS,
		rpc:           opts.RPC,
		parser:        parser,
		store:         opts.Store,
		mint:          opts.Mint,
		slotLagWindow: slotLagWindow,
		flushInterval: flushInterval,
		logger:        logger,
		buffer:        make(map[uint64][]*domain.TradeFact),
	}
}

// Run starts continuous ingestion. It blocks until the context is
// cancelled or the subscription closes.
func (r *LiveRunner) Run(ctx context.Context) error {
	notifications, err := r.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{r.mint}})
	if err != nil {
		return err
	}
	r.logger.Printf("Subscribed to logs for mint %s", r.mint)

	flushTicker := time.NewTicker(r.flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Release all remaining facts before shutdown, when ordering
			// against future slots no longer matters.
			r.flushAllSlots(ctx)
			r.logger.Println("Live runner stopping...")
			return ctx.Err()

		case notification, ok := <-notifications:
			if !ok {
				r.flushAllSlots(ctx)
				return errors.New("log notification channel closed")
			}
			r.handleNotification(ctx, notification)

		case <-flushTicker.C:
			// Safety net: release finalized slots even when no higher
			// slot arrives to advance the watermark.
			r.releaseFinalizedSlots(ctx)
		}
	}
}

// handleNotification fetches and decodes one discovered signature and
// buffers the resulting fact by slot.
func (r *LiveRunner) handleNotification(ctx context.Context, n solana.LogNotification) {
	if n.Err != nil {
		observability.RecordTransactionSkipped("failed_transaction")
		return
	}

	fact, outcome := fetchTradeFact(ctx, r.rpc, r.parser, r.logger, r.mint, n.Signature)
	if outcome != outcomeDecoded {
		return
	}

	slot := fact.Slot
	r.buffer[slot] = append(r.buffer[slot], fact)

	if slot > r.highestSlot {
		r.highestSlot = slot
		observability.UpdateHighestSlot(slot)
		r.releaseFinalizedSlots(ctx)
	} else if slot+r.slotLagWindow <= r.highestSlot {
		// Late fact for an already-finalized slot: release immediately.
		r.releaseSlot(ctx, slot)
	}
}

// releaseFinalizedSlots releases every buffered slot that trails the
// highest slot by at least the lag window, in ascending order.
func (r *LiveRunner) releaseFinalizedSlots(ctx context.Context) {
	if r.highestSlot < r.slotLagWindow {
		return
	}
	finalized := r.highestSlot - r.slotLagWindow

	var slots []uint64
	for slot := range r.buffer {
		if slot <= finalized {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	for _, slot := range slots {
		r.releaseSlot(ctx, slot)
	}
}

// releaseSlot stores all facts buffered for one slot in canonical order.
func (r *LiveRunner) releaseSlot(ctx context.Context, slot uint64) {
	facts, ok := r.buffer[slot]
	if !ok || len(facts) == 0 {
		return
	}
	delete(r.buffer, slot)

	ordering.Sort(facts)
	for _, fact := range facts {
		if r.store == nil {
			continue
		}
		start := time.Now()
		err := r.store.Insert(ctx, fact)
		observability.RecordDBQuery("store", "insert_trade_fact", time.Since(start).Seconds(), err)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			r.logger.Printf("Error storing trade fact %s: %v", fact.Signature, err)
			continue
		}
		observability.RecordFactsStored(1)
	}
}

// flushAllSlots releases every buffered slot on shutdown.
func (r *LiveRunner) flushAllSlots(ctx context.Context) {
	var slots []uint64
	for slot := range r.buffer {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	for _, slot := range slots {
		r.releaseSlot(ctx, slot)
	}
}
