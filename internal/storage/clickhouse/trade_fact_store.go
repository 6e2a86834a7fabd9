package clickhouse

import (
	"context"
	"fmt"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// TradeFactStore implements storage.TradeFactStore using ClickHouse.
// MergeTree does not enforce uniqueness, so duplicates are rejected by
// explicit existence checks before insert.
type TradeFactStore struct {
	conn *Conn
}

// NewTradeFactStore creates a new TradeFactStore.
func NewTradeFactStore(conn *Conn) *TradeFactStore {
	return &TradeFactStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeFactStore = (*TradeFactStore)(nil)

// Insert adds a new fact. Returns ErrDuplicateKey if (mint, signature) exists.
func (s *TradeFactStore) Insert(ctx context.Context, fact *domain.TradeFact) error {
	if fact == nil || fact.Mint == "" || fact.Signature == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.TradeFact{fact})
}

// InsertBulk adds multiple facts atomically. Fails entire batch on any duplicate.
func (s *TradeFactStore) InsertBulk(ctx context.Context, facts []*domain.TradeFact) error {
	if len(facts) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		mint      string
		signature string
	}
	seen := make(map[key]struct{}, len(facts))
	for _, fact := range facts {
		if fact == nil || fact.Mint == "" || fact.Signature == "" {
			return storage.ErrInvalidInput
		}
		k := key{fact.Mint, fact.Signature}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, fact := range facts {
		exists, err := s.exists(ctx, fact.Mint, fact.Signature)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_facts (
			mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, fact := range facts {
		err = batch.Append(
			fact.Mint, fact.Signature, fact.Slot, fact.Signer, string(fact.Side),
			fact.TokenRequested, fact.SolLimit, fact.SolChange, fact.TokenChange,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all facts for a mint, ordered by slot ASC, signature ASC.
func (s *TradeFactStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeFact, error) {
	query := `
		SELECT mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
		FROM trade_facts
		WHERE mint = ?
		ORDER BY slot ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanTradeFacts(rows)
}

// GetBySlotRange retrieves facts for a mint within [start, end] (inclusive).
func (s *TradeFactStore) GetBySlotRange(ctx context.Context, mint string, start, end uint64) ([]*domain.TradeFact, error) {
	query := `
		SELECT mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
		FROM trade_facts
		WHERE mint = ? AND slot >= ? AND slot <= ?
		ORDER BY slot ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by slot range: %w", err)
	}
	defer rows.Close()

	return scanTradeFacts(rows)
}

// exists checks if a fact with the given key exists.
func (s *TradeFactStore) exists(ctx context.Context, mint, signature string) (bool, error) {
	query := `
		SELECT count(*) FROM trade_facts
		WHERE mint = ? AND signature = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, mint, signature).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTradeFacts scans multiple rows.
func scanTradeFacts(rows chRows) ([]*domain.TradeFact, error) {
	var facts []*domain.TradeFact

	for rows.Next() {
		var fact domain.TradeFact
		var side string

		err := rows.Scan(
			&fact.Mint, &fact.Signature, &fact.Slot, &fact.Signer, &side,
			&fact.TokenRequested, &fact.SolLimit, &fact.SolChange, &fact.TokenChange,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade fact row: %w", err)
		}

		fact.Side = domain.TradeSide(side)
		facts = append(facts, &fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade fact rows: %w", err)
	}

	return facts, nil
}
