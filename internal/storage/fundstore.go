// Package storage provides remote-first persistence for the user's fund
// list, with a local JSON file as read fallback and write mirror.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/models"
)

// FundStore keeps the fund list in a remote blob and mirrors every write to
// a local file, so a dead remote degrades to the last synced copy instead of
// an empty dashboard.
type FundStore struct {
	mu     sync.Mutex
	remote interfaces.RemoteBlobClient
	path   string
	logger *common.Logger
}

// NewFundStore creates a fund store. remote may be nil, in which case only
// the local file is used (offline mode).
func NewFundStore(remote interfaces.RemoteBlobClient, path string, logger *common.Logger) (*FundStore, error) {
	if path == "" {
		return nil, fmt.Errorf("fund store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FundStore{
		remote: remote,
		path:   path,
		logger: logger,
	}, nil
}

// Load reads the fund list: remote first, local file on failure. A list that
// cannot be read anywhere is an empty list — callers never see an error for
// a missing or unreachable store.
func (s *FundStore) Load(ctx context.Context) []models.FundRecord {
	if s.remote != nil {
		funds, err := s.remote.GetFunds(ctx)
		if err == nil {
			return funds
		}
		s.logger.Warn().Err(err).Msg("Remote fund store unreachable, falling back to local file")
	}

	return s.loadLocal()
}

func (s *FundStore) loadLocal() []models.FundRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Local fund file unreadable")
		}
		return nil
	}

	var funds []models.FundRecord
	if err := json.Unmarshal(data, &funds); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Local fund file corrupt")
		return nil
	}
	return funds
}

// Save replaces the fund list in the remote store and mirrors it to the
// local file. The local mirror is written even when the remote write fails,
// so edits survive an outage.
func (s *FundStore) Save(ctx context.Context, funds []models.FundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, funds)
}

func (s *FundStore) save(ctx context.Context, funds []models.FundRecord) error {
	var remoteErr error
	if s.remote != nil {
		remoteErr = s.remote.PutFunds(ctx, funds)
		if remoteErr != nil {
			s.logger.Warn().Err(remoteErr).Msg("Remote fund store write failed")
		}
	}

	data, err := json.MarshalIndent(funds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal funds: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	return remoteErr
}

// Upsert inserts or replaces one fund by code and saves the list.
func (s *FundStore) Upsert(ctx context.Context, fund models.FundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	funds := s.Load(ctx)
	replaced := false
	for i := range funds {
		if funds[i].Code == fund.Code {
			funds[i] = fund
			replaced = true
			break
		}
	}
	if !replaced {
		funds = append(funds, fund)
	}

	return s.save(ctx, funds)
}

// Delete removes one fund by code and saves the list.
func (s *FundStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = strings.TrimSpace(code)
	funds := s.Load(ctx)

	kept := funds[:0]
	found := false
	for _, f := range funds {
		if f.Code == code {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return models.ErrFundNotFound
	}

	return s.save(ctx, kept)
}

// Ensure FundStore implements FundStore
var _ interfaces.FundStore = (*FundStore)(nil)
