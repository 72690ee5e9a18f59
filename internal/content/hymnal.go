package content

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// AllCategories matches every hymn in Search.
const AllCategories = "all"

// Hymn is one hymnal entry. Chorus and verses may contain the
// two-character sequence `\n` for line breaks.
type Hymn struct {
	Number              string   `json:"number"`
	Title               string   `json:"title"`
	TitleWithHymnNumber string   `json:"titleWithHymnNumber"`
	Chorus              string   `json:"chorus"`
	Verses              []string `json:"verses"`
	Sound               string   `json:"sound"`
	Category            string   `json:"category"`
}

// Display returns h with line-break sequences expanded.
func (h Hymn) Display() Hymn {
	h.Chorus = expandLineBreaks(h.Chorus)
	verses := make([]string, len(h.Verses))
	for i, v := range h.Verses {
		verses[i] = expandLineBreaks(v)
	}
	h.Verses = verses
	return h
}

func expandLineBreaks(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

type hymnalDocument struct {
	Hymns map[string]Hymn `json:"hymns"`
}

// Hymnal is the ordered hymn collection.
type Hymnal struct {
	hymns    []Hymn
	byNumber map[string]int
}

// LoadHymnal decodes a hymnal document. Hymns are ordered by numeric key,
// with non-numeric keys after in lexical order.
func LoadHymnal(r io.Reader) (*Hymnal, error) {
	var doc hymnalDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode hymnal: %w", err)
	}

	keys := make([]string, 0, len(doc.Hymns))
	for k := range doc.Hymns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	h := &Hymnal{
		hymns:    make([]Hymn, 0, len(keys)),
		byNumber: make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		hymn := doc.Hymns[k]
		if hymn.Number == "" {
			hymn.Number = k
		}
		h.byNumber[hymn.Number] = len(h.hymns)
		h.hymns = append(h.hymns, hymn)
	}
	return h, nil
}

// Len returns the number of hymns.
func (h *Hymnal) Len() int {
	return len(h.hymns)
}

// Get returns the hymn with the given number.
func (h *Hymnal) Get(number string) (Hymn, bool) {
	i, ok := h.byNumber[strings.TrimSpace(number)]
	if !ok {
		return Hymn{}, false
	}
	return h.hymns[i], true
}

// Categories returns AllCategories followed by each category in the order
// it first appears.
func (h *Hymnal) Categories() []string {
	categories := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, hymn := range h.hymns {
		if hymn.Category == "" || seen[hymn.Category] {
			continue
		}
		seen[hymn.Category] = true
		categories = append(categories, hymn.Category)
	}
	return categories
}

// Search filters hymns by category and then by query. The query matches a
// case-insensitive title substring or a number substring. Empty query and
// category (or AllCategories) return every hymn.
func (h *Hymnal) Search(query, category string) []Hymn {
	query = strings.ToLower(strings.TrimSpace(query))

	result := make([]Hymn, 0, len(h.hymns))
	for _, hymn := range h.hymns {
		if category != "" && category != AllCategories && hymn.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(hymn.Title), query) &&
			!strings.Contains(hymn.Number, query) {
			continue
		}
		result = append(result, hymn)
	}
	return result
}
