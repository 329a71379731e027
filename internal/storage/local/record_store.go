// Package local persists page records as JSON files on the local filesystem.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/crawler"
)

// RecordStore writes one pretty-printed JSON file per page record, grouped
// by the record's host and keyed by a generated unique id:
//
//	<root>/<host>/<uuid>.json
type RecordStore struct {
	root   string
	logger *zap.Logger
}

var _ crawler.RecordSink = (*RecordStore)(nil)

// New creates a store rooted at dir, creating it if needed.
func New(root string, logger *zap.Logger) (*RecordStore, error) {
	if root == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore{root: root, logger: logger}, nil
}

// Save writes the record and returns the file path.
func (s *RecordStore) Save(ctx context.Context, record crawler.PageRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}

	host := recordHost(record.URL)
	dir := filepath.Join(s.root, host)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create host dir %s: %w", dir, err)
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	target := filepath.Join(dir, uuid.NewString()+".json")
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("write record %s: %w", target, err)
	}
	return target, nil
}

// SaveAll persists every record, logging and skipping individual failures.
// It returns how many records were written.
func (s *RecordStore) SaveAll(ctx context.Context, records []crawler.PageRecord) int {
	saved := 0
	for _, record := range records {
		path, err := s.Save(ctx, record)
		if err != nil {
			s.logger.Warn("save record", zap.String("url", record.URL), zap.Error(err))
			continue
		}
		s.logger.Debug("record saved", zap.String("url", record.URL), zap.String("path", path))
		saved++
	}
	return saved
}

// recordHost extracts the grouping directory from a record URL. Records with
// unparseable URLs land in a catch-all directory rather than failing.
func recordHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown-host"
	}
	return u.Host
}
