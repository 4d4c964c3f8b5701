package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"activityScope/internal/model"
)

// JsonlStorage appends events or classify error records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// CreateJsonlStorage truncates or creates the file at path and returns a
// storage appending to it.
func CreateJsonlStorage(path string) (*JsonlStorage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close output file: %w", err)
	}
	return &JsonlStorage{path: path}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}

// PutEventBatch appends events as `_type`-tagged JSON lines.
func (s *JsonlStorage) PutEventBatch(ctx context.Context, events []model.ActivityEvent) error {
	records := make([]any, 0, len(events))
	for _, event := range events {
		records = append(records, event)
	}
	return s.appendLines(records)
}

// PutClassifyErrors appends classify error records as JSON lines.
func (s *JsonlStorage) PutClassifyErrors(ctx context.Context, records []model.ClassifyError) error {
	lines := make([]any, 0, len(records))
	for _, record := range records {
		lines = append(lines, record)
	}
	return s.appendLines(lines)
}

func (s *JsonlStorage) appendLines(records []any) error {
	if len(records) == 0 {
		return nil
	}

	if err := ensureDir(s.path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			file.Close()
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			file.Close()
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			file.Close()
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// maxLineSize bounds a single JSONL record; bundles with many token rows can
// exceed bufio's default.
const maxLineSize = 16 * 1024 * 1024

// ScanLines calls fn for each non-empty line of r with its 1-based line number.
func ScanLines(r io.Reader, fn func(lineNo int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

// ReadEvents decodes an events JSONL stream.
func ReadEvents(r io.Reader) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := ScanLines(r, func(lineNo int, line []byte) error {
		event, err := model.DecodeEvent(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, event)
		return nil
	})
	return events, err
}
