package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// rename is swapped in tests to simulate a crash between write and replace.
var rename = os.Rename

// Store: файловое хранилище снапшота (state.json), запись атомарная: tmp + rename.
type Store struct {
	path        string
	instruments []string
	baseTP      float64

	mu sync.Mutex
}

func NewStore(cfg *config.Config) *Store {
	return New(cfg.State.Path, cfg.Instruments, cfg.Strategy.TakeProfitPct)
}

func New(path string, instruments []string, baseTP float64) *Store {
	return &Store{
		path:        path,
		instruments: append([]string(nil), instruments...),
		baseTP:      baseTP,
	}
}

func (s *Store) Path() string { return s.path }

// Default returns a pristine snapshot for the configured instruments.
func (s *Store) Default() *models.Snapshot {
	return models.NewSnapshot(s.instruments, s.baseTP)
}

// Load never fails: a missing file yields defaults, a corrupt one is logged and
// replaced by defaults in memory.
func (s *Store) Load() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("state load failed, using defaults: %v", err)
		}
		return s.Default()
	}

	snap, err := s.decode(b)
	if err != nil {
		logger.Error("state load failed, using defaults: %v", err)
		return s.Default()
	}
	return snap
}

// positionRecord: поля-указатели, чтобы отличить "нет поля" от нулевого значения.
type positionRecord struct {
	InPosition *bool               `json:"in_position"`
	EntryPrice *float64            `json:"entry_price"`
	TakeProfit *float64            `json:"take_profit"`
	LastMsg    *models.SentMessage `json:"last_msg"`
}

func (s *Store) decode(b []byte) (*models.Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}
	if doc == nil {
		return nil, errors.Errorf("decode %s: not an object", s.path)
	}

	snap := s.Default()
	for key, raw := range doc {
		if key == models.GlobalLastMsgKey {
			var m *models.SentMessage
			if err := sonic.ConfigStd.Unmarshal(raw, &m); err != nil {
				return nil, errors.Wrapf(err, "decode %s", key)
			}
			snap.GlobalLastMsg = m
			continue
		}

		var rec *positionRecord
		if err := sonic.ConfigStd.Unmarshal(raw, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode %s", key)
		}
		snap.Positions[key] = s.merge(rec)
	}
	return snap, nil
}

// merge fills every missing field from the default position and restores the
// entry_price <=> in_position invariant.
func (s *Store) merge(rec *positionRecord) *models.Position {
	p := models.NewPosition(s.baseTP)
	if rec == nil {
		return p
	}
	if rec.InPosition != nil {
		p.InPosition = *rec.InPosition
	}
	if rec.TakeProfit != nil && *rec.TakeProfit > 0 {
		p.TakeProfit = *rec.TakeProfit
	}
	p.LastMsg = rec.LastMsg

	if p.InPosition && rec.EntryPrice != nil && *rec.EntryPrice > 0 {
		entry := *rec.EntryPrice
		p.EntryPrice = &entry
	} else {
		p.Close(s.baseTP)
	}
	return p
}

func encode(snap *models.Snapshot) ([]byte, error) {
	doc := make(map[string]interface{}, len(snap.Positions)+1)
	for sym, p := range snap.Positions {
		doc[sym] = p
	}
	doc[models.GlobalLastMsgKey] = snap.GlobalLastMsg
	return sonic.ConfigStd.MarshalIndent(doc, "", "    ")
}

// Save serialises snap to a temp file in the same directory and renames it over
// the canonical file, so readers only ever observe whole documents.
func (s *Store) Save(snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := encode(snap)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	tmpName := tmp.Name()
	defer func() {
		// после удачного rename файла уже нет
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp state file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "chmod temp state file")
	}
	if err := rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "replace %s", s.path)
	}
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
