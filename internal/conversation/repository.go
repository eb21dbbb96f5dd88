package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation state as one JSONB document per
// identity. Saves are last-write-wins; the engine serializes per identity.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a pgx-backed conversation store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, identity string) (*State, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM conversations WHERE identity = $1`, identity).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading conversation %s: %w", identity, err)
	}

	st := &State{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decoding conversation %s: %w", identity, err)
	}
	if st.Quiz.Answers == nil {
		st.Quiz.Answers = make(map[string]string)
	}
	if st.Flags == nil {
		st.Flags = make(Flags)
	}
	return st, nil
}

func (s *PostgresStore) Save(ctx context.Context, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding conversation %s: %w", st.Identity, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversations (identity, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identity) DO UPDATE SET state = $2, updated_at = $4`,
		st.Identity, raw, st.CreatedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", st.Identity, err)
	}
	return nil
}

// Delete removes the conversation row entirely. Used by the privacy flow.
func (s *PostgresStore) Delete(ctx context.Context, identity string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE identity = $1`, identity)
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", identity, err)
	}
	return nil
}
