package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "remindd/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.snapshot.json (periodic snapshot of all state)
//   - <prefix>.journal.jsonl (append-only journal of changes)
//
// The journal is periodically compacted into the snapshot.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalFile  *os.File

	jobs      map[string]JobRecord
	reminders map[string]ReminderRecord

	writes int
}

const compactEvery = 256

type journalRecord struct {
	Op       string          `json:"op"` // put_job, del_job, put_reminder, del_reminder
	ID       string          `json:"id,omitempty"`
	Job      *JobRecord      `json:"job,omitempty"`
	Reminder *ReminderRecord `json:"reminder,omitempty"`
}

type snapshot struct {
	Jobs      map[string]JobRecord      `json:"jobs"`
	Reminders map[string]ReminderRecord `json:"reminders"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".snapshot.json"
	journalPath := prefix + ".journal.jsonl"

	st := &fileStore{
		log:          log,
		snapshotPath: snapPath,
		jobs:         map[string]JobRecord{},
		reminders:    map[string]ReminderRecord{},
	}
	_ = st.loadSnapshot(snapPath)
	_ = st.replayJournal(journalPath)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	st.journalFile = jf
	return st, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return nil
	}
	// Compact on close so restarts load a fresh snapshot cheaply.
	if err := s.compactLocked(); err != nil {
		s.log.Debug("snapshot compact on close failed", logx.Err(err))
	}
	err := s.journalFile.Close()
	s.journalFile = nil
	return err
}

func (s *fileStore) PutJob(ctx context.Context, rec JobRecord) error {
	_ = ctx
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("job id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[rec.ID] = rec
	return s.appendLocked(journalRecord{Op: "put_job", Job: &rec})
}

func (s *fileStore) DeleteJob(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return nil
	}
	delete(s.jobs, id)
	return s.appendLocked(journalRecord{Op: "del_job", ID: id})
}

func (s *fileStore) ListJobs(ctx context.Context) ([]JobRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobRecord, 0, len(s.jobs))
	for _, rec := range s.jobs {
		out = append(out, rec)
	}
	return out, nil
}

func (s *fileStore) PutReminder(ctx context.Context, rec ReminderRecord) error {
	_ = ctx
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("reminder id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[rec.ID] = rec
	return s.appendLocked(journalRecord{Op: "put_reminder", Reminder: &rec})
}

func (s *fileStore) DeleteReminder(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[id]; !ok {
		return nil
	}
	delete(s.reminders, id)
	return s.appendLocked(journalRecord{Op: "del_reminder", ID: id})
}

func (s *fileStore) ListReminders(ctx context.Context) ([]ReminderRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReminderRecord, 0, len(s.reminders))
	for _, rec := range s.reminders {
		out = append(out, rec)
	}
	return out, nil
}

func (s *fileStore) appendLocked(rec journalRecord) error {
	if s.journalFile == nil {
		return errors.New("journal closed")
	}
	if err := json.NewEncoder(s.journalFile).Encode(rec); err != nil {
		return err
	}
	s.writes++
	if s.writes%compactEvery == 0 {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("snapshot compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) compactLocked() error {
	tmp := s.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	snap := snapshot{Jobs: s.jobs, Reminders: s.reminders}
	if err := json.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}
	// Truncate journal.
	if err := s.journalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.journalFile.Seek(0, 2)
	return err
}

func (s *fileStore) loadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return err
	}
	for k, v := range snap.Jobs {
		s.jobs[k] = v
	}
	for k, v := range snap.Reminders {
		s.reminders[k] = v
	}
	return nil
}

func (s *fileStore) replayJournal(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec journalRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		switch rec.Op {
		case "put_job":
			if rec.Job != nil && rec.Job.ID != "" {
				s.jobs[rec.Job.ID] = *rec.Job
			}
		case "del_job":
			delete(s.jobs, rec.ID)
		case "put_reminder":
			if rec.Reminder != nil && rec.Reminder.ID != "" {
				s.reminders[rec.Reminder.ID] = *rec.Reminder
			}
		case "del_reminder":
			delete(s.reminders, rec.ID)
		}
	}
	return sc.Err()
}
