package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/dto"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/repository"

	"github.com/google/uuid"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNoteNotFound  = errors.New("note not found")
)

type NotesRepository interface {
	Create(ctx context.Context, note *model.Note) error
	ListByUser(ctx context.Context, userID string) ([]*model.Note, error)
	Get(ctx context.Context, noteID, userID string) (*model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, noteID, userID string) error
}

// ImageStore releases image files that notes no longer reference. Saving
// uploads happens at the handler, before the service is involved.
type ImageStore interface {
	Remove(imageURL string) error
}

type NotesService struct {
	Repo   NotesRepository
	Images ImageStore
}

func (s *NotesService) Create(ctx context.Context, userID, title, description, imageURL string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now()
	note := &model.Note{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NotesService) List(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *NotesService) Get(ctx context.Context, userID, noteID string) (*model.Note, error) {
	note, err := s.Repo.Get(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// Update applies the provided fields and, when a replacement image has been
// saved, releases the previous image only after the record is committed. A
// crash between the two steps leaves an unreferenced file behind, never a
// note pointing at a missing one.
func (s *NotesService) Update(ctx context.Context, userID, noteID string, p dto.NotePayload, newImageURL *string) (*model.Note, error) {
	note, err := s.Get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	oldImage := note.ImageURL

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		note.Title = title
	}
	if p.Description != nil {
		note.Description = *p.Description
	}
	if newImageURL != nil {
		note.ImageURL = *newImageURL
	}
	note.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if newImageURL != nil && oldImage != "" && oldImage != note.ImageURL {
		if err := s.Images.Remove(oldImage); err != nil {
			log.Printf("failed to remove replaced image %s: %v", oldImage, err)
		}
	}

	return note, nil
}

// Delete removes the record first, then its image file.
func (s *NotesService) Delete(ctx context.Context, userID, noteID string) error {
	note, err := s.Get(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, noteID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	if note.ImageURL != "" {
		if err := s.Images.Remove(note.ImageURL); err != nil {
			log.Printf("failed to remove image %s: %v", note.ImageURL, err)
		}
	}

	return nil
}
