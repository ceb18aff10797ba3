package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type RiskState struct {
	ConsecutiveLosses int
	Reduced           bool
}

type ScheduleState struct {
	LastRestartDate   string
	LastSummaryDate   string
	LastHeartbeatTime time.Time
	LastTradeTime     time.Time
}

// Snapshot is the loop state that must survive the daily restart. The
// running balance is deliberately absent: it is reloaded from the ledger.
type Snapshot struct {
	Risk           RiskState
	Schedule       ScheduleState
	NotifyFailures int
}

type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) SetRisk(risk RiskState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Risk = risk
}

func (s *Store) SetNotifyFailures(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.NotifyFailures = n
}

func (s *Store) SetLastTradeTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Schedule.LastTradeTime = t
}

func (s *Store) SetLastHeartbeatTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Schedule.LastHeartbeatTime = t
}

func (s *Store) SetLastSummaryDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Schedule.LastSummaryDate = date
}

func (s *Store) SetLastRestartDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Schedule.LastRestartDate = date
}

func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(s.snapshot, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

// writeFileAtomic writes data via a temp file and rename so a crash mid-write
// never leaves a truncated checkpoint.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
