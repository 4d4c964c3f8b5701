package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CursorStore persists the sync cursor: the exclusive upper version bound of
// the next page to fetch.
type CursorStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, cursor uint64) error
}

// Checkpoint is the on-disk cursor record.
type Checkpoint struct {
	Account       string `json:"account"`
	CursorVersion uint64 `json:"cursor_version"`
	UpdatedAt     string `json:"updated_at"`
}

// FileCursorStore keeps the cursor in a JSON file, replaced atomically on save.
// A checkpoint written for another account is ignored.
type FileCursorStore struct {
	Path    string
	Account string
}

func NewFileCursorStore(path, account string) *FileCursorStore {
	return &FileCursorStore{Path: path, Account: account}
}

func (s *FileCursorStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Path == "" {
		return 0, false, nil
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return 0, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	if s.Account != "" && cp.Account != s.Account {
		return 0, false, nil
	}
	return cp.CursorVersion, true, nil
}

func (s *FileCursorStore) Save(ctx context.Context, cursor uint64) error {
	if s == nil || s.Path == "" {
		return nil
	}

	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	cp := Checkpoint{
		Account:       s.Account,
		CursorVersion: cursor,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// StateBackend is a named cursor table, implemented by the Postgres store.
type StateBackend interface {
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, cursor uint64) error
}

// DBCursorStore keeps the cursor in a StateBackend row.
type DBCursorStore struct {
	Backend StateBackend
	Name    string
}

// StateName is the sync_state row name for an account.
func StateName(account string) string {
	return "sync:" + account
}

func (s *DBCursorStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Backend == nil {
		return 0, false, nil
	}
	return s.Backend.LoadState(ctx, s.Name)
}

func (s *DBCursorStore) Save(ctx context.Context, cursor uint64) error {
	if s == nil || s.Backend == nil {
		return nil
	}
	return s.Backend.SaveState(ctx, s.Name, cursor)
}
