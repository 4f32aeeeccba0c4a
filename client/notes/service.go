// Package notes implements the client-side note cache: the on-device source
// of truth, mutated optimistically and reconciled with the server later.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/api"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/storage"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/sync"

	"github.com/google/uuid"
)

var ErrNoteNotFound = errors.New("note not found")

type Service struct {
	store storage.Storage
	api   *api.Client
	queue *sync.Queue
	log   *slog.Logger
}

func NewService(store storage.Storage, apiClient *api.Client, queue *sync.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, api: apiClient, queue: queue, log: logger}
}

func notesKey(userID string) string {
	return "notes_" + userID
}

// GetAll returns the cached notes for the user. On a cache miss it seeds the
// cache from the server; if that fails it degrades to an empty list rather
// than surfacing the error, so the UI always renders.
func (s *Service) GetAll(ctx context.Context, userID string) ([]model.Note, error) {
	raw, err := s.store.Get(notesKey(userID))
	if err == nil {
		var notes []model.Note
		if err := json.Unmarshal(raw, &notes); err == nil {
			return notes, nil
		}
		s.log.Warn("discarding corrupt note cache", "user", userID)
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		s.log.Warn("note cache read failed", "user", userID, "err", err)
	}

	notes, err := s.fetchRemote(ctx, userID)
	if err != nil {
		s.log.Warn("remote seed failed, starting empty", "err", err)
		return []model.Note{}, nil
	}

	if err := s.save(userID, notes); err != nil {
		s.log.Warn("could not persist seeded cache", "err", err)
	}
	return notes, nil
}

// Create applies the note locally with synced=false and records a create
// entry on the queue. No network is touched.
func (s *Service) Create(ctx context.Context, userID string, form model.NoteForm) (*model.Note, error) {
	now := time.Now()
	note := model.Note{
		ID:        uuid.NewString(),
		Title:     form.Title,
		Content:   form.Content,
		Photo:     form.Photo,
		CreatedAt: now,
		UpdatedAt: now,
		Synced:    false,
		UserID:    userID,
	}

	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	all = append([]model.Note{note}, all...)
	if err := s.save(userID, all); err != nil {
		return nil, err
	}

	if err := s.queue.Append(userID, sync.OpCreate, &note, ""); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch model.NotePatch) (*model.Note, error) {
	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(all, id)
	if idx < 0 {
		return nil, ErrNoteNotFound
	}

	note := all[idx]
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Photo != nil {
		note.Photo = *patch.Photo
	}
	note.UpdatedAt = time.Now()
	note.Synced = false
	all[idx] = note

	if err := s.save(userID, all); err != nil {
		return nil, err
	}

	if err := s.queue.Append(userID, sync.OpUpdate, &note, ""); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return err
	}

	idx := indexOf(all, id)
	if idx < 0 {
		return ErrNoteNotFound
	}

	all = append(all[:idx], all[idx+1:]...)
	if err := s.save(userID, all); err != nil {
		return err
	}

	// The queue entry is the only tombstone for a locally deleted note.
	return s.queue.Append(userID, sync.OpDelete, nil, id)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(all, id); idx >= 0 {
		return &all[idx], nil
	}
	return nil, ErrNoteNotFound
}

// Refresh replaces the cache with the server's view; every note comes back
// synced. Called by the reconciler after a fully confirmed flush.
func (s *Service) Refresh(ctx context.Context, userID string) error {
	notes, err := s.fetchRemote(ctx, userID)
	if err != nil {
		return err
	}
	return s.save(userID, notes)
}

// RemapNoteID rewrites a provisional local note id to the id the server
// assigned when the create entry was confirmed.
func (s *Service) RemapNoteID(ctx context.Context, userID, oldID, newID string) error {
	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return err
	}
	if idx := indexOf(all, oldID); idx >= 0 {
		all[idx].ID = newID
		return s.save(userID, all)
	}
	return nil
}

func (s *Service) fetchRemote(ctx context.Context, userID string) ([]model.Note, error) {
	remote, err := s.api.ListNotes(ctx)
	if err != nil {
		return nil, err
	}

	notes := make([]model.Note, 0, len(remote))
	for _, rn := range remote {
		notes = append(notes, model.Note{
			ID:        rn.ID,
			Title:     rn.Title,
			Content:   rn.Description,
			Photo:     s.api.ResolveURL(rn.ImageURL),
			CreatedAt: rn.CreatedAt,
			UpdatedAt: rn.UpdatedAt,
			Synced:    true,
			UserID:    rn.UserID,
		})
	}
	return notes, nil
}

func (s *Service) save(userID string, notes []model.Note) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	return s.store.Set(notesKey(userID), raw)
}

func indexOf(notes []model.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}
