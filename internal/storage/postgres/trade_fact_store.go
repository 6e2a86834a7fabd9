package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// TradeFactStore implements storage.TradeFactStore using PostgreSQL.
type TradeFactStore struct {
	pool *Pool
}

// NewTradeFactStore creates a new TradeFactStore.
func NewTradeFactStore(pool *Pool) *TradeFactStore {
	return &TradeFactStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeFactStore = (*TradeFactStore)(nil)

const insertTradeFactSQL = `
	INSERT INTO trade_facts (
		mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert adds a new fact. Returns ErrDuplicateKey if (mint, signature) exists.
func (s *TradeFactStore) Insert(ctx context.Context, fact *domain.TradeFact) error {
	if fact == nil || fact.Mint == "" || fact.Signature == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeFactSQL,
		fact.Mint,
		fact.Signature,
		fact.Slot,
		fact.Signer,
		string(fact.Side),
		fact.TokenRequested,
		fact.SolLimit,
		fact.SolChange,
		fact.TokenChange,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade fact: %w", err)
	}
	return nil
}

// InsertBulk adds multiple facts atomically. Fails entire batch on any duplicate.
func (s *TradeFactStore) InsertBulk(ctx context.Context, facts []*domain.TradeFact) error {
	if len(facts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, fact := range facts {
		if fact == nil || fact.Mint == "" || fact.Signature == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertTradeFactSQL,
			fact.Mint,
			fact.Signature,
			fact.Slot,
			fact.Signer,
			string(fact.Side),
			fact.TokenRequested,
			fact.SolLimit,
			fact.SolChange,
			fact.TokenChange,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade fact in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByMint retrieves all facts for a mint, ordered by slot ASC, signature ASC.
func (s *TradeFactStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeFact, error) {
	query := `
		SELECT mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
		FROM trade_facts
		WHERE mint = $1
		ORDER BY slot ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get trade facts by mint: %w", err)
	}
	defer rows.Close()

	return scanTradeFacts(rows)
}

// GetBySlotRange retrieves facts for a mint within [start, end] (inclusive).
func (s *TradeFactStore) GetBySlotRange(ctx context.Context, mint string, start, end uint64) ([]*domain.TradeFact, error) {
	query := `
		SELECT mint, signature, slot, signer, side, token_requested, sol_limit, sol_change, token_change
		FROM trade_facts
		WHERE mint = $1 AND slot >= $2 AND slot <= $3
		ORDER BY slot ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, mint, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trade facts by slot range: %w", err)
	}
	defer rows.Close()

	return scanTradeFacts(rows)
}

// scanTradeFacts scans multiple rows into a slice of TradeFact.
func scanTradeFacts(rows pgx.Rows) ([]*domain.TradeFact, error) {
	var facts []*domain.TradeFact

	for rows.Next() {
		var fact domain.TradeFact
		var side string

		err := rows.Scan(
			&fact.Mint,
			&fact.Signature,
			&fact.Slot,
			&fact.Signer,
			&side,
			&fact.TokenRequested,
			&fact.SolLimit,
			&fact.SolChange,
			&fact.TokenChange,
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
