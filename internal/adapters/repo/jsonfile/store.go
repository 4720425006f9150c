package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/domain"
	"github.com/aikawam/vcwatch/internal/ports"
)

const (
	configFileName = "config.json"
	totalsFileName = "daily_totals.json"
	storeFileMode  = 0o644
	storeDirMode   = 0o755
	tempPattern    = ".vcwatch-*.json.tmp"
)

// Store persists the two state documents under a data directory. Writes go
// through a temp file and an atomic rename so readers never observe a
// partial document and the prior document survives a crash mid-write.
// Unreadable or malformed documents load as empty state, never as errors.
type Store struct {
	dir string
	mu  *sync.RWMutex
	log *zap.Logger
}

var (
	lockRegistryMu sync.Mutex
	dirLockMap     = map[string]*sync.RWMutex{}
)

var (
	_ ports.ConfigRepository = (*Store)(nil)
	_ ports.TotalsRepository = (*Store)(nil)
)

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	absDir = filepath.Clean(absDir)

	return &Store{dir: absDir, mu: lockForDir(absDir), log: log}, nil
}

func (s *Store) LoadDestination(ctx context.Context) (domain.ChannelID, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.readDocument(configFileName)
	if !ok {
		return "", false, nil
	}

	var doc configDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("decode config document", zap.Error(err))
		return "", false, nil
	}

	channel, ok := parseDestination(doc.DestChannelID)
	return channel, ok, nil
}

func (s *Store) SaveDestination(ctx context.Context, channel domain.ChannelID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := configDocument{}
	if channel != "" {
		raw, err := json.Marshal(string(channel))
		if err != nil {
			return fmt.Errorf("encode destination: %w", err)
		}
		doc.DestChannelID = raw
	}

	return s.writeDocument(configFileName, doc)
}

func (s *Store) LoadTotals(ctx context.Context) (domain.DailyTotals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.readDocument(totalsFileName)
	if !ok {
		return domain.DailyTotals{}, nil
	}

	var doc map[string]float64
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("decode totals document", zap.Error(err))
		return domain.DailyTotals{}, nil
	}

	return totalsFromSeconds(doc), nil
}

func (s *Store) SaveTotals(ctx context.Context, totals domain.DailyTotals) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeDocument(totalsFileName, totalsToSeconds(totals))
}

// readDocument returns the raw bytes, or ok=false for a missing or
// unreadable file after logging. Load failures are non-fatal by contract.
func (s *Store) readDocument(name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("read state document", zap.String("file", name), zap.Error(err))
		}
		return nil, false
	}

	return data, true
}

func (s *Store) writeDocument(name string, doc any) error {
	if err := os.MkdirAll(s.dir, storeDirMode); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tempFile, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(storeFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	cleanup = false
	return nil
}

func lockForDir(dir string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := dirLockMap[dir]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	dirLockMap[dir] = mu
	return mu
}
