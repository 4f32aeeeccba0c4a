// Package sync holds the pending-mutation queue and the reconciler that
// replays it against the server when connectivity returns.
package sync

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/storage"

	"github.com/google/uuid"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Entry is one pending local mutation. Create and update carry the full note
// snapshot; delete carries only the note id.
type Entry struct {
	ID          string      `json:"id"`
	Op          Op          `json:"operation"`
	Note        *model.Note `json:"payload,omitempty"`
	NoteID      string      `json:"note_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	RetryCount  int         `json:"retry_count,omitempty"`
	NextRetryAt time.Time   `json:"next_retry_at,omitempty"`
}

// Queue is an ordered log of Entry records, stored per user as one JSON
// blob, rewritten wholesale on every change.
type Queue struct {
	store storage.Storage
}

func NewQueue(store storage.Storage) *Queue {
	return &Queue{store: store}
}

func queueKey(userID string) string {
	return "syncqueue_" + userID
}

func (q *Queue) Load(userID string) ([]Entry, error) {
	raw, err := q.store.Get(queueKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return []Entry{}, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (q *Queue) Save(userID string, entries []Entry) error {
	if len(entries) == 0 {
		return q.store.Delete(queueKey(userID))
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return q.store.Set(queueKey(userID), raw)
}

// Append records a mutation. No deduplication: three updates to the same
// note produce three entries.
func (q *Queue) Append(userID string, op Op, note *model.Note, noteID string) error {
	entries, err := q.Load(userID)
	if err != nil {
		return err
	}

	entries = append(entries, Entry{
		ID:        uuid.NewString(),
		Op:        op,
		Note:      note,
		NoteID:    noteID,
		Timestamp: time.Now(),
	})

	return q.Save(userID, entries)
}

func (q *Queue) Len(userID string) (int, error) {
	entries, err := q.Load(userID)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
