package usecase

import (
	"context"
	"sort"
	"testing"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/dto"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotesRepo struct {
	notes map[string]*model.Note

	updateErr error
	// events records repo writes interleaved with image removals, shared
	// with fakeImageStore to check ordering.
	events *[]string
}

func newFakeNotesRepo(events *[]string) *fakeNotesRepo {
	return &fakeNotesRepo{notes: map[string]*model.Note{}, events: events}
}

func (r *fakeNotesRepo) Create(_ context.Context, note *model.Note) error {
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNotesRepo) ListByUser(_ context.Context, userID string) ([]*model.Note, error) {
	var out []*model.Note
	for _, n := range r.notes {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotesRepo) Get(_ context.Context, noteID, userID string) (*model.Note, error) {
	n, ok := r.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotesRepo) Update(_ context.Context, note *model.Note) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	n, ok := r.notes[note.ID]
	if !ok || n.UserID != note.UserID {
		return repository.ErrNotFound
	}
	cp := *note
	r.notes[note.ID] = &cp
	if r.events != nil {
		*r.events = append(*r.events, "update")
	}
	return nil
}

func (r *fakeNotesRepo) Delete(_ context.Context, noteID, userID string) error {
	n, ok := r.notes[noteID]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.notes, noteID)
	if r.events != nil {
		*r.events = append(*r.events, "delete")
	}
	return nil
}

type fakeImageStore struct {
	removed []string
	events  *[]string
}

func (f *fakeImageStore) Remove(imageURL string) error {
	f.removed = append(f.removed, imageURL)
	if f.events != nil {
		*f.events = append(*f.events, "remove:"+imageURL)
	}
	return nil
}

func newNotesService() (*NotesService, *fakeNotesRepo, *fakeImageStore) {
	events := &[]string{}
	repo := newFakeNotesRepo(events)
	images := &fakeImageStore{events: events}
	return &NotesService{Repo: repo, Images: images}, repo, images
}

func TestCreateNote(t *testing.T) {
	svc, _, _ := newNotesService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "u1", "groceries", "milk", "")
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)

	_, err = svc.Create(ctx, "u1", "   ", "no title", "")
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestNotesOwnerIsolation(t *testing.T) {
	svc, _, _ := newNotesService()
	ctx := context.Background()

	mine, err := svc.Create(ctx, "u1", "mine", "", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", "theirs", "", "")
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Title)

	// another user's id behaves exactly like a missing one
	_, err = svc.Get(ctx, "u2", mine.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = svc.Update(ctx, "u2", mine.ID, dto.NotePayload{}, nil)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	err = svc.Delete(ctx, "u2", mine.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestUpdateNote(t *testing.T) {
	svc, _, _ := newNotesService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "u1", "before", "old", "")
	require.NoError(t, err)

	title := "after"
	updated, err := svc.Update(ctx, "u1", note.ID, dto.NotePayload{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "old", updated.Description, "untouched fields keep their value")

	got, err := svc.Get(ctx, "u1", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)

	empty := "  "
	_, err = svc.Update(ctx, "u1", note.ID, dto.NotePayload{Title: &empty}, nil)
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestUpdateReplacesImageAfterCommit(t *testing.T) {
	svc, repo, images := newNotesService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "u1", "photo note", "", "/uploads/old.png")
	require.NoError(t, err)

	newURL := "/uploads/new.png"
	updated, err := svc.Update(ctx, "u1", note.ID, dto.NotePayload{}, &newURL)
	require.NoError(t, err)
	assert.Equal(t, newURL, updated.ImageURL)

	require.Equal(t, []string{"/uploads/old.png"}, images.removed)
	assert.Equal(t, []string{"update", "remove:/uploads/old.png"}, *repo.events,
		"old image is released only after the record is committed")
}

func TestUpdateFailureKeepsOldImage(t *testing.T) {
	svc, repo, images := newNotesService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "u1", "photo note", "", "/uploads/old.png")
	require.NoError(t, err)

	repo.updateErr = assert.AnError
	newURL := "/uploads/new.png"
	_, err = svc.Update(ctx, "u1", note.ID, dto.NotePayload{}, &newURL)
	require.Error(t, err)

	assert.Empty(t, images.removed, "a failed update must not release the old image")

	got, err := svc.Get(ctx, "u1", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/old.png", got.ImageURL)
}

func TestDeleteNote(t *testing.T) {
	svc, repo, images := newNotesService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "u1", "bye", "", "/uploads/pic.png")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", note.ID))
	assert.Equal(t, []string{"/uploads/pic.png"}, images.removed)
	assert.Equal(t, []string{"delete", "remove:/uploads/pic.png"}, *repo.events)

	// deleting again reports not found
	err = svc.Delete(ctx, "u1", note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
