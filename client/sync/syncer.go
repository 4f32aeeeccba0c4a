package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/api"
)

// Cache is the slice of the note cache the syncer needs: a full refresh
// after a clean flush, and id rewrites when the server assigns canonical
// ids to locally created notes.
type Cache interface {
	Refresh(ctx context.Context, userID string) error
	RemapNoteID(ctx context.Context, userID, oldID, newID string) error
}

// FlushResult summarizes one flush pass over the queue.
type FlushResult struct {
	Confirmed int // replayed successfully and removed
	Dropped   int // permanently rejected and removed
	Failed    int // kept for retry with backoff
	Deferred  int // kept: not yet due, or behind a kept entry for the same note
}

// Drained reports whether the queue is empty after the pass.
func (r FlushResult) Drained() bool {
	return r.Failed == 0 && r.Deferred == 0
}

const (
	backoffBase = 30 * time.Second
	backoffMax  = 5 * time.Minute
)

// Syncer replays queued mutations against the server, one entry at a time,
// in enqueue order. Only confirmed entries leave the queue.
type Syncer struct {
	queue *Queue
	api   *api.Client
	cache Cache
	log   *slog.Logger

	// now is swapped out in tests
	now func() time.Time
}

func NewSyncer(queue *Queue, apiClient *api.Client, cache Cache, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{queue: queue, api: apiClient, cache: cache, log: logger, now: time.Now}
}

// Flush replays the queue. Entries succeed and are removed, are dropped as
// permanently rejected, or stay with an incremented retry count and a
// backoff deadline. Once an entry for a note is kept, every later entry for
// the same note is held back untouched: replaying an update past its pending
// create would 404 against the provisional id, and replaying entries out of
// order would let a stale snapshot win. A fully drained queue triggers a
// cache refresh from the server; a partial flush leaves the cache untouched
// so unsynced local state stays visible.
func (s *Syncer) Flush(ctx context.Context, userID string) (FlushResult, error) {
	entries, err := s.queue.Load(userID)
	if err != nil {
		return FlushResult{}, err
	}
	if len(entries) == 0 {
		return FlushResult{}, nil
	}

	var (
		res       FlushResult
		remaining []Entry
		renames   = map[string]string{}
		blocked   = map[string]bool{}
		now       = s.now()
	)

	for _, e := range entries {
		applyRenames(&e, renames)
		ref := noteRef(&e)

		if blocked[ref] {
			remaining = append(remaining, e)
			res.Deferred++
			continue
		}

		if !e.NextRetryAt.IsZero() && now.Before(e.NextRetryAt) {
			remaining = append(remaining, e)
			res.Deferred++
			blocked[ref] = true
			continue
		}

		err := s.apply(ctx, &e, renames)
		switch {
		case err == nil:
			res.Confirmed++
		case errors.Is(err, api.ErrRejected), errors.Is(err, api.ErrNotFound):
			// Replaying a rejected payload, or touching a note the server
			// never had, will never succeed.
			s.log.Warn("dropping unreplayable entry", "op", e.Op, "entry", e.ID, "err", err)
			res.Dropped++
		default:
			e.RetryCount++
			e.NextRetryAt = now.Add(backoff(e.RetryCount))
			remaining = append(remaining, e)
			res.Failed++
			blocked[ref] = true
			s.log.Warn("entry replay failed, kept for retry",
				"op", e.Op, "entry", e.ID, "retries", e.RetryCount, "err", err)
		}
	}

	if err := s.queue.Save(userID, remaining); err != nil {
		return res, err
	}

	if len(remaining) == 0 {
		if err := s.cache.Refresh(ctx, userID); err != nil {
			s.log.Warn("cache refresh after flush failed", "err", err)
		}
		return res, nil
	}

	// Partial flush: still propagate any server-assigned ids so later
	// passes and the UI reference the canonical ones.
	for oldID, newID := range renames {
		if err := s.cache.RemapNoteID(ctx, userID, oldID, newID); err != nil {
			s.log.Warn("note id remap failed", "old", oldID, "err", err)
		}
	}
	return res, nil
}

func (s *Syncer) apply(ctx context.Context, e *Entry, renames map[string]string) error {
	switch e.Op {
	case OpCreate:
		created, err := s.api.CreateNote(ctx, e.Note.Title, e.Note.Content, e.Note.Photo)
		if err != nil {
			return err
		}
		if created.ID != e.Note.ID {
			renames[e.Note.ID] = created.ID
		}
		return nil

	case OpUpdate:
		_, err := s.api.UpdateNote(ctx, e.Note.ID, &e.Note.Title, &e.Note.Content, e.Note.Photo)
		return err

	case OpDelete:
		err := s.api.DeleteNote(ctx, e.NoteID)
		if errors.Is(err, api.ErrNotFound) {
			// Already gone server-side; the intent is satisfied. A delete
			// whose create is still queued never reaches here, Flush holds
			// it back.
			return nil
		}
		return err

	default:
		return errors.New("unknown queue operation: " + string(e.Op))
	}
}

// noteRef is the note id an entry operates on, used to hold later entries
// for the same note behind a kept one.
func noteRef(e *Entry) string {
	if e.Note != nil {
		return e.Note.ID
	}
	return e.NoteID
}

func applyRenames(e *Entry, renames map[string]string) {
	if e.Note != nil {
		if id, ok := renames[e.Note.ID]; ok {
			e.Note.ID = id
		}
	}
	if e.NoteID != "" {
		if id, ok := renames[e.NoteID]; ok {
			e.NoteID = id
		}
	}
}

func backoff(retries int) time.Duration {
	d := backoffBase
	for i := 1; i < retries; i++ {
		d *= 2
		if d >= backoffMax {
			return backoffMax
		}
	}
	return d
}
