package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activityScope/internal/model"
)

// Store provides Postgres persistence for classified events and sync state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type txKey struct {
	account string
	version uint64
}

// queueClear removes the stored outcome of each transaction so a batch
// replaces it as a whole. The batch runs as one implicit transaction.
func queueClear(batch *pgx.Batch, keys []txKey) {
	for _, key := range keys {
		batch.Queue(`DELETE FROM activity_events WHERE account = $1 AND version = $2`, key.account, int64(key.version))
		batch.Queue(`DELETE FROM classify_errors WHERE account = $1 AND version = $2`, key.account, int64(key.version))
	}
}

func execBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch) error {
	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutEventBatch stores events keyed by (account, version, event_index). The
// events of a transaction replace whatever was stored for it before,
// including a classify error.
func (s *Store) PutEventBatch(ctx context.Context, events []model.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	var keys []txKey
	seen := make(map[txKey]struct{})
	for _, event := range events {
		key := txKey{event.Base().Account, event.Base().Version}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	batch := &pgx.Batch{}
	queueClear(batch, keys)
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		base := event.Base()
		batch.Queue(`
			INSERT INTO activity_events (
				account, version, event_index, event_type, event_ts, success, payload, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (account, version, event_index)
			DO UPDATE SET
				event_type = EXCLUDED.event_type,
				event_ts = EXCLUDED.event_ts,
				success = EXCLUDED.success,
				payload = EXCLUDED.payload,
				updated_at = now()
		`,
			base.Account,
			int64(base.Version),
			base.EventIndex,
			string(event.Type()),
			base.Timestamp,
			base.Success,
			payload,
		)
	}
	return execBatch(ctx, s.pool, batch)
}

// PutClassifyErrors upserts classify error records keyed by (account, version)
// and drops events previously stored for those transactions.
func (s *Store) PutClassifyErrors(ctx context.Context, records []model.ClassifyError) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`DELETE FROM activity_events WHERE account = $1 AND version = $2`, record.Account, int64(record.Version))
	}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO classify_errors (account, version, run_id, kind, error, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (account, version)
			DO UPDATE SET
				run_id = EXCLUDED.run_id,
				kind = EXCLUDED.kind,
				error = EXCLUDED.error,
				updated_at = now()
		`,
			record.Account,
			int64(record.Version),
			record.RunID,
			record.Kind,
			record.Error,
		)
	}
	return execBatch(ctx, s.pool, batch)
}

// LoadClassifyErrors returns the recorded failures of an account, newest first.
func (s *Store) LoadClassifyErrors(ctx context.Context, account string) ([]model.ClassifyError, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, account, version, kind, error
		FROM classify_errors
		WHERE account = $1
		ORDER BY version DESC
	`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ClassifyError
	for rows.Next() {
		var record model.ClassifyError
		var version int64
		if err := rows.Scan(&record.RunID, &record.Account, &version, &record.Kind, &record.Error); err != nil {
			return nil, err
		}
		record.Version = uint64(version)
		records = append(records, record)
	}
	return records, rows.Err()
}

// LoadEvents returns the events of up to limit transactions with a version
// below beforeVersion (zero means no bound), version descending and
// event_index ascending. MinVersion of the page is the bound for the next call.
func (s *Store) LoadEvents(ctx context.Context, account string, beforeVersion uint64, limit int) (model.Page, error) {
	if limit <= 0 {
		return model.Page{}, fmt.Errorf("limit must be greater than zero")
	}
	before := int64(^uint64(0) >> 1)
	if beforeVersion > 0 && beforeVersion <= uint64(before) {
		before = int64(beforeVersion)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT e.version, e.payload
		FROM activity_events e
		WHERE e.account = $1
		  AND e.version IN (
			SELECT DISTINCT version
			FROM activity_events
			WHERE account = $1 AND version < $2
			ORDER BY version DESC
			LIMIT $3
		  )
		ORDER BY e.version DESC, e.event_index ASC
	`, account, before, limit)
	if err != nil {
		return model.Page{}, err
	}
	defer rows.Close()

	var page model.Page
	for rows.Next() {
		var version int64
		var payload []byte
		if err := rows.Scan(&version, &payload); err != nil {
			return model.Page{}, err
		}
		event, err := model.DecodeEvent(payload)
		if err != nil {
			return model.Page{}, fmt.Errorf("decode stored event %d: %w", version, err)
		}
		page.Events = append(page.Events, event)
		page.MinVersion = uint64(version)
	}
	if err := rows.Err(); err != nil {
		return model.Page{}, err
	}
	return page, nil
}

// LoadState returns the cursor_version saved under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var cursor int64
	row := s.pool.QueryRow(ctx, `SELECT cursor_version FROM sync_state WHERE name=$1`, name)
	if err := row.Scan(&cursor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(cursor), true, nil
}

// SaveState upserts cursor_version for name.
func (s *Store) SaveState(ctx context.Context, name string, cursor uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_state (name, cursor_version, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET cursor_version = EXCLUDED.cursor_version, updated_at = now()
	`, name, int64(cursor))
	return err
}
