package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/fellowship/internal/entities"
)

// ProgramsController lists ministry programs.
type ProgramsController struct {
	remote ProgramLister
	cache  DevotionalReader
}

func NewProgramsController(remote ProgramLister, cache DevotionalReader) *ProgramsController {
	return &ProgramsController{remote: remote, cache: cache}
}

// ProgramsResponse lists programs and where they came from.
type ProgramsResponse struct {
	Data   []entities.Program `json:"data"`
	Total  int                `json:"total"`
	Source string             `json:"source"`
}

// List handles GET /api/programs
// Programs come from the remote API. When it is unreachable the names of
// programs present in the cache are returned instead.
func (pc *ProgramsController) List(c *gin.Context) {
	if pc.remote != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		remote, err := pc.remote.ListPrograms(ctx)
		if err == nil {
			programs := make([]entities.Program, len(remote))
			for i, p := range remote {
				programs[i] = entities.Program{ID: p.ID, Title: p.Title, CreatedAt: p.CreatedAt}
			}
			c.JSON(http.StatusOK, ProgramsResponse{Data: programs, Total: len(programs), Source: "remote"})
			return
		}
		log.Printf("Programs: remote list failed, using cache: %v", err)
	}

	names := pc.cache.Programs(c.Request.Context())
	programs := make([]entities.Program, len(names))
	for i, name := range names {
		programs[i] = entities.Program{Title: name}
	}
	c.JSON(http.StatusOK, ProgramsResponse{Data: programs, Total: len(programs), Source: "cache"})
}
