package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/dto"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/middleware"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/services"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/usecase"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/utils"

	"github.com/gin-gonic/gin"
)

// bindNotePayload accepts either a multipart form (the mobile client) or a
// plain JSON body. The optional image file only arrives via multipart.
func bindNotePayload(c *gin.Context) (dto.NotePayload, *multipart.FileHeader, error) {
	var p dto.NotePayload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&p); err != nil {
			return p, nil, err
		}
		file, err := c.FormFile("image")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			return p, nil, err
		}
		return p, file, nil
	}

	err := c.ShouldBindJSON(&p)
	return p, nil, err
}

// saveImage stores the upload, if any, and returns the resulting URL.
func saveImage(uploads *services.UploadStore, file *multipart.FileHeader) (*string, error) {
	if file == nil {
		return nil, nil
	}
	url, err := uploads.Save(file)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func CreateNoteHandler(c *gin.Context, notesService *usecase.NotesService, uploads *services.UploadStore) {
	userID := c.GetString(middleware.ContextUserID)

	p, file, err := bindNotePayload(c)
	if err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	imageURL, err := saveImage(uploads, file)
	if err != nil {
		log.Printf("failed to save upload: %v", err)
		utils.InternalError(c, "error saving image")
		return
	}

	title, description := "", ""
	if p.Title != nil {
		title = *p.Title
	}
	if p.Description != nil {
		description = *p.Description
	}
	url := ""
	if imageURL != nil {
		url = *imageURL
	}

	note, err := notesService.Create(c.Request.Context(), userID, title, description, url)
	if err != nil {
		if imageURL != nil {
			uploads.Remove(*imageURL)
		}
		if errors.Is(err, usecase.ErrTitleRequired) {
			utils.BadRequest(c, "title is required")
			return
		}
		log.Printf("create note failed: %v", err)
		utils.InternalError(c, "error creating note")
		return
	}

	middleware.TrackNoteOperation("create")
	c.JSON(201, note)
}

func ListNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	userID := c.GetString(middleware.ContextUserID)

	notes, err := notesService.List(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list notes failed: %v", err)
		utils.InternalError(c, "error listing notes")
		return
	}

	c.JSON(200, notes)
}

func GetNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	userID := c.GetString(middleware.ContextUserID)
	noteID := c.Param("id")

	note, err := notesService.Get(c.Request.Context(), userID, noteID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			utils.NotFound(c, "note not found")
			return
		}
		log.Printf("get note failed: %v", err)
		utils.InternalError(c, "error fetching note")
		return
	}

	c.JSON(200, note)
}

func UpdateNoteHandler(c *gin.Context, notesService *usecase.NotesService, uploads *services.UploadStore) {
	userID := c.GetString(middleware.ContextUserID)
	noteID := c.Param("id")

	p, file, err := bindNotePayload(c)
	if err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	imageURL, err := saveImage(uploads, file)
	if err != nil {
		log.Printf("failed to save upload: %v", err)
		utils.InternalError(c, "error saving image")
		return
	}

	note, err := notesService.Update(c.Request.Context(), userID, noteID, p, imageURL)
	if err != nil {
		// A new image saved for a failed update would otherwise be orphaned.
		if imageURL != nil {
			uploads.Remove(*imageURL)
		}
		switch {
		case errors.Is(err, usecase.ErrNoteNotFound):
			utils.NotFound(c, "note not found")
		case errors.Is(err, usecase.ErrTitleRequired):
			utils.BadRequest(c, "title is required")
		default:
			log.Printf("update note failed: %v", err)
			utils.InternalError(c, "error updating note")
		}
		return
	}

	middleware.TrackNoteOperation("update")
	c.JSON(200, note)
}

func DeleteNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	userID := c.GetString(middleware.ContextUserID)
	noteID := c.Param("id")

	if err := notesService.Delete(c.Request.Context(), userID, noteID); err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			utils.NotFound(c, "note not found")
			return
		}
		log.Printf("delete note failed: %v", err)
		utils.InternalError(c, "error deleting note")
		return
	}

	middleware.TrackNoteOperation("delete")
	c.JSON(200, dto.MessageResponse{Message: "note deleted"})
}
