package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/fellowship/internal/content"
)

type HymnsController struct {
	hymnal *content.Hymnal
}

func NewHymnsController(hymnal *content.Hymnal) *HymnsController {
	return &HymnsController{hymnal: hymnal}
}

// List handles GET /api/hymns?q=&category=
func (hc *HymnsController) List(c *gin.Context) {
	respondList(c, hc.hymnal.Search(c.Query("q"), c.Query("category")))
}

// Categories handles GET /api/hymns/categories
func (hc *HymnsController) Categories(c *gin.Context) {
	respondList(c, hc.hymnal.Categories())
}

// Get handles GET /api/hymns/:number
// Line breaks in the chorus and verses are expanded.
func (hc *HymnsController) Get(c *gin.Context) {
	hymn, ok := hc.hymnal.Get(c.Param("number"))
	if !ok {
		respondNotFound(c, "hymn")
		return
	}
	c.JSON(http.StatusOK, hymn.Display())
}
