// Package journal implements the organizer's append-only WAL-style journal:
// one intent record before a filesystem operation executes, one outcome
// record after, and a reverse() that replays outcomes to undo a plan.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/model"
	"github.com/gofrs/flock"
)

// Journal appends intent/outcome records for one plan to journal/<plan-id>.jsonl.
// A Journal is the sole writer for the lifetime of one plan; Open enforces
// this across processes with an advisory file lock, not just within one
// process with the mutex.
type Journal struct {
	mu    sync.Mutex
	path  string
	seq   int64
	f     *os.File
	flock *flock.Flock
}

// Open creates or appends to the journal file for planID under dir
// (typically <cache-root>/journal), taking an exclusive advisory lock on a
// sidecar ".lock" file so two processes can never write the same plan's
// journal concurrently.
func Open(dir, planID string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "create journal directory")
	}

	lockPath := filepath.Join(dir, planID+".lock")
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "acquire journal lock")
	}
	if !locked {
		return nil, apperr.New(apperr.KindStorageFailure, "journal already owned by another process").
			WithField("plan_id", planID)
	}

	path := filepath.Join(dir, planID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		_ = fl.Unlock()
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "open journal file")
	}
	return &Journal{path: path, f: f, flock: fl}, nil
}

// Close flushes the underlying file and releases the journal's write lock.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	closeErr := j.f.Close()
	if err := j.flock.Unlock(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// RecordIntent appends an intent entry before the operation executes.
func (j *Journal) RecordIntent(runID, planID string, item model.PlanItem) (model.JournalEntry, error) {
	return j.append(model.JournalEntry{
		RunID: runID, PlanID: planID, Kind: model.JournalIntent, Item: item, Timestamp: time.Now(),
	})
}

// RecordOutcome appends an outcome entry after the operation executes (or
// fails); opErr is nil on success.
func (j *Journal) RecordOutcome(runID, planID string, item model.PlanItem, opErr error) (model.JournalEntry, error) {
	entry := model.JournalEntry{
		RunID: runID, PlanID: planID, Kind: model.JournalOutcome, Item: item,
		Success: opErr == nil, Timestamp: time.Now(),
	}
	if opErr != nil {
		entry.Err = opErr.Error()
	}
	return j.append(entry)
}

func (j *Journal) append(entry model.JournalEntry) (model.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	entry.Sequence = j.seq

	line, err := json.Marshal(entry)
	if err != nil {
		return entry, apperr.Wrap(apperr.KindStorageFailure, err, "marshal journal entry")
	}
	if _, err := j.f.Write(append(line, '\n')); err != nil {
		return entry, apperr.Wrap(apperr.KindStorageFailure, err, "write journal entry")
	}
	if err := j.f.Sync(); err != nil {
		return entry, apperr.Wrap(apperr.KindStorageFailure, err, "sync journal file")
	}
	return entry, nil
}

// Path returns the journal file's path.
func (j *Journal) Path() string { return j.path }

// ErrJournalMissing is returned by Read/Reverse when the journal file for a
// plan ID does not exist.
var ErrJournalMissing = fmt.Errorf("journal: plan journal not found")

// Read replays every entry in the journal for planID, in append order.
func Read(dir, planID string) ([]model.JournalEntry, error) {
	path := filepath.Join(dir, planID+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrJournalMissing
		}
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "open journal for read")
	}
	defer f.Close()

	var entries []model.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e model.JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, apperr.Wrap(apperr.KindStorageFailure, err, "parse journal entry")
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "scan journal")
	}
	return entries, nil
}
