package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/fellowship/internal/database/notes"
	"github.com/mrlokans/fellowship/internal/entities"
)

// NotesController handles CRUD for local notes.
type NotesController struct {
	store NoteStore
}

// NewNotesController creates a new NotesController.
func NewNotesController(store NoteStore) *NotesController {
	return &NotesController{store: store}
}

// List handles GET /api/notes
func (nc *NotesController) List(c *gin.Context) {
	list, err := nc.store.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	respondList(c, list)
}

// Get handles GET /api/notes/:id
func (nc *NotesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := nc.store.Get(c.Request.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		respondNotFound(c, "note")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get note")
		return
	}
	c.JSON(http.StatusOK, note)
}

// Create handles POST /api/notes
func (nc *NotesController) Create(c *gin.Context) {
	var draft entities.NoteDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	note, err := nc.store.Create(c.Request.Context(), draft)
	if errors.Is(err, notes.ErrEmptyNote) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "create note")
		return
	}
	respondCreated(c, note)
}

// Update handles PUT /api/notes/:id
func (nc *NotesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var draft entities.NoteDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	note, err := nc.store.Update(c.Request.Context(), id, draft)
	switch {
	case errors.Is(err, notes.ErrEmptyNote):
		respondBadRequest(c, err.Error())
	case errors.Is(err, notes.ErrNotFound):
		respondNotFound(c, "note")
	case err != nil:
		respondInternalError(c, err, "update note")
	default:
		c.JSON(http.StatusOK, note)
	}
}

// Delete handles DELETE /api/notes/:id
func (nc *NotesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := nc.store.Delete(c.Request.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		respondNotFound(c, "note")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete note")
		return
	}
	respondSuccess(c, "note deleted")
}
