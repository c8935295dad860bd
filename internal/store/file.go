package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gyeh/autoport/internal/model"
)

// FileStore keeps records as JSON lines in a single file. Ids are assigned as
// one more than the largest id in the file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the file's directory if needed. The file itself is
// created on first Append.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create metadata directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Append(ctx context.Context, rec *model.ReportMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	err := s.scan(func(r model.ReportMetadata) error {
		if r.ID > maxID {
			maxID = r.ID
		}
		return nil
	})
	if err != nil {
		return err
	}

	rec.ID = maxID + 1
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open metadata file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append metadata: %w", err)
	}
	return f.Close()
}

func (s *FileStore) Recent(ctx context.Context, limit int) ([]model.ReportMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []model.ReportMetadata
	if err := s.scan(func(r model.ReportMetadata) error {
		all = append(all, r)
		return ctx.Err()
	}); err != nil {
		return nil, err
	}

	out := make([]model.ReportMetadata, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

// Each calls fn for every record in file order.
func (s *FileStore) Each(fn func(model.ReportMetadata) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan(fn)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) scan(fn func(model.ReportMetadata) error) error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open metadata file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec model.ReportMetadata
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read metadata file: %w", err)
	}
	return nil
}
