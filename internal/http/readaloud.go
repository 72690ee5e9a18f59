package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/fellowship/internal/content"
	"github.com/mrlokans/fellowship/internal/readaloud"
)

// ReadAloudController exposes the read-aloud transport over HTTP.
type ReadAloudController struct {
	player ReadAloud
	bible  *content.Bible

	mu      sync.Mutex
	chapter *ChapterLink
}

func NewReadAloudController(player ReadAloud, bible *content.Bible) *ReadAloudController {
	return &ReadAloudController{player: player, bible: bible}
}

// StartRequest selects the chapter to read. Chapter is 1-based.
type StartRequest struct {
	Book    string `json:"book" binding:"required"`
	Chapter int    `json:"chapter" binding:"required,min=1"`
}

// ReadAloudResponse reports the player state after a command.
type ReadAloudResponse struct {
	State   readaloud.State `json:"state"`
	Chapter *ChapterLink    `json:"chapter,omitempty"`
	Applied bool            `json:"applied"`
}

// State handles GET /api/readaloud
func (rc *ReadAloudController) State(c *gin.Context) {
	rc.respond(c, true)
}

// Start handles POST /api/readaloud/start
// Reading starts at the first verse of the chapter.
func (rc *ReadAloudController) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book and chapter are required")
		return
	}

	bookIndex, err := rc.bible.FindBook(req.Book)
	if err != nil {
		respondNotFound(c, "book")
		return
	}
	verses, err := rc.bible.Chapter(content.Position{Book: bookIndex, Chapter: req.Chapter - 1})
	if err != nil {
		respondNotFound(c, "chapter")
		return
	}
	book, _ := rc.bible.Book(bookIndex)

	rc.mu.Lock()
	rc.chapter = &ChapterLink{Book: book.Abbrev, Chapter: req.Chapter}
	rc.mu.Unlock()

	rc.respond(c, rc.player.Start(verses))
}

// Command returns a handler for a transport command that takes no input.
func (rc *ReadAloudController) Command(name string) gin.HandlerFunc {
	var cmd func() bool
	switch name {
	case "pause":
		cmd = rc.player.Pause
	case "resume":
		cmd = rc.player.Resume
	case "restart":
		cmd = rc.player.Restart
	case "next":
		cmd = rc.player.Next
	case "previous":
		cmd = rc.player.Previous
	case "stop":
		cmd = func() bool {
			rc.player.Stop()
			return true
		}
	default:
		return func(c *gin.Context) {
			respondNotFound(c, "command")
		}
	}

	return func(c *gin.Context) {
		rc.respond(c, cmd())
	}
}

func (rc *ReadAloudController) respond(c *gin.Context, applied bool) {
	rc.mu.Lock()
	chapter := rc.chapter
	rc.mu.Unlock()

	state := rc.player.State()
	if state.Status == readaloud.Idle && state.Total == 0 {
		chapter = nil
	}

	c.JSON(http.StatusOK, ReadAloudResponse{
		State:   state,
		Chapter: chapter,
		Applied: applied,
	})
}
