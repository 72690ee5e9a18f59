// Package content holds the read-only Bible and hymnal documents.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrChapterNotFound = errors.New("chapter not found")
)

// Book is one entry of the Bible document.
type Book struct {
	Abbrev   string     `json:"abbrev"`
	Name     string     `json:"name,omitempty"`
	Chapters [][]string `json:"chapters"`
}

// BookInfo describes a book without its text.
type BookInfo struct {
	Index    int    `json:"index"`
	Abbrev   string `json:"abbrev"`
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// Position addresses a chapter. Both fields are 0-based.
type Position struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
}

// Bible is an ordered list of books, each a list of chapters of verses.
type Bible struct {
	books []Book
}

// LoadBible decodes a Bible document: a JSON array of books.
func LoadBible(r io.Reader) (*Bible, error) {
	var books []Book
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return nil, fmt.Errorf("failed to decode bible: %w", err)
	}
	if len(books) == 0 {
		return nil, errors.New("bible has no books")
	}
	for i, b := range books {
		if len(b.Chapters) == 0 {
			return nil, fmt.Errorf("book %s has no chapters", displayName(b, i))
		}
	}
	return &Bible{books: books}, nil
}

func displayName(b Book, index int) string {
	switch {
	case b.Name != "":
		return b.Name
	case b.Abbrev != "":
		return b.Abbrev
	default:
		return fmt.Sprintf("Book %d", index+1)
	}
}

// Books lists every book in order.
func (b *Bible) Books() []BookInfo {
	infos := make([]BookInfo, len(b.books))
	for i, book := range b.books {
		infos[i] = BookInfo{
			Index:    i,
			Abbrev:   book.Abbrev,
			Name:     displayName(book, i),
			Chapters: len(book.Chapters),
		}
	}
	return infos
}

// Book returns the description of the book at index.
func (b *Bible) Book(index int) (BookInfo, error) {
	if index < 0 || index >= len(b.books) {
		return BookInfo{}, fmt.Errorf("%w: %d", ErrBookNotFound, index)
	}
	return b.Books()[index], nil
}

// FindBook resolves a book by abbreviation, name (case-insensitive) or
// 1-based number.
func (b *Bible) FindBook(key string) (int, error) {
	key = strings.TrimSpace(key)
	for i, book := range b.books {
		if strings.EqualFold(book.Abbrev, key) || strings.EqualFold(displayName(book, i), key) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(b.books) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBookNotFound, key)
}

// Chapter returns the verses at pos.
func (b *Bible) Chapter(pos Position) ([]string, error) {
	if pos.Book < 0 || pos.Book >= len(b.books) {
		return nil, fmt.Errorf("%w: %d", ErrBookNotFound, pos.Book)
	}
	chapters := b.books[pos.Book].Chapters
	if pos.Chapter < 0 || pos.Chapter >= len(chapters) {
		return nil, fmt.Errorf("%w: %s %d", ErrChapterNotFound, displayName(b.books[pos.Book], pos.Book), pos.Chapter+1)
	}
	return chapters[pos.Chapter], nil
}

// NextChapter returns the chapter after pos, crossing into the next book
// after a book's last chapter. It reports false at the end of the Bible.
func (b *Bible) NextChapter(pos Position) (Position, bool) {
	if !b.valid(pos) {
		return pos, false
	}
	if pos.Chapter < len(b.books[pos.Book].Chapters)-1 {
		return Position{Book: pos.Book, Chapter: pos.Chapter + 1}, true
	}
	if pos.Book < len(b.books)-1 {
		return Position{Book: pos.Book + 1}, true
	}
	return pos, false
}

// PrevChapter returns the chapter before pos, crossing into the last chapter
// of the previous book. It reports false at the start of the Bible.
func (b *Bible) PrevChapter(pos Position) (Position, bool) {
	if !b.valid(pos) {
		return pos, false
	}
	if pos.Chapter > 0 {
		return Position{Book: pos.Book, Chapter: pos.Chapter - 1}, true
	}
	if pos.Book > 0 {
		return Position{Book: pos.Book - 1, Chapter: len(b.books[pos.Book-1].Chapters) - 1}, true
	}
	return pos, false
}

func (b *Bible) HasNext(pos Position) bool {
	_, ok := b.NextChapter(pos)
	return ok
}

func (b *Bible) HasPrev(pos Position) bool {
	_, ok := b.PrevChapter(pos)
	return ok
}

func (b *Bible) valid(pos Position) bool {
	return pos.Book >= 0 && pos.Book < len(b.books) &&
		pos.Chapter >= 0 && pos.Chapter < len(b.books[pos.Book].Chapters)
}
