package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/fellowship/internal/content"
)

type BibleController struct {
	bible *content.Bible
}

func NewBibleController(bible *content.Bible) *BibleController {
	return &BibleController{bible: bible}
}

// ChapterResponse is one chapter with links to its neighbours.
// Book and chapter numbers in links are 1-based.
type ChapterResponse struct {
	Book    content.BookInfo `json:"book"`
	Chapter int              `json:"chapter"`
	Verses  []string         `json:"verses"`
	Next    *ChapterLink     `json:"next,omitempty"`
	Prev    *ChapterLink     `json:"prev,omitempty"`
}

type ChapterLink struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// Books handles GET /api/bible/books
func (bc *BibleController) Books(c *gin.Context) {
	respondList(c, bc.bible.Books())
}

// Chapter handles GET /api/bible/books/:book/chapters/:chapter
// :book is an abbreviation, a name or a 1-based number.
func (bc *BibleController) Chapter(c *gin.Context) {
	bookIndex, err := bc.bible.FindBook(c.Param("book"))
	if err != nil {
		respondNotFound(c, "book")
		return
	}
	chapter, ok := parseOrdinalParam(c, "chapter")
	if !ok {
		return
	}

	pos := content.Position{Book: bookIndex, Chapter: chapter}
	verses, err := bc.bible.Chapter(pos)
	if errors.Is(err, content.ErrChapterNotFound) {
		respondNotFound(c, "chapter")
		return
	}
	if err != nil {
		respondInternalError(c, err, "bible chapter")
		return
	}

	book, _ := bc.bible.Book(bookIndex)
	resp := ChapterResponse{
		Book:    book,
		Chapter: chapter + 1,
		Verses:  verses,
	}
	if next, ok := bc.bible.NextChapter(pos); ok {
		resp.Next = bc.link(next)
	}
	if prev, ok := bc.bible.PrevChapter(pos); ok {
		resp.Prev = bc.link(prev)
	}

	c.JSON(http.StatusOK, resp)
}

func (bc *BibleController) link(pos content.Position) *ChapterLink {
	book, err := bc.bible.Book(pos.Book)
	if err != nil {
		return nil
	}
	return &ChapterLink{Book: book.Abbrev, Chapter: pos.Chapter + 1}
}
