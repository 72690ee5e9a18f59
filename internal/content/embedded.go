package content

import (
	"embed"
	"fmt"
	"os"
)

//go:embed assets
var embeddedAssets embed.FS

// DefaultBible returns the Bible bundled with the binary.
func DefaultBible() (*Bible, error) {
	f, err := embeddedAssets.Open("assets/bible.json")
	if err != nil {
		return nil, fmt.Errorf("open embedded bible: %w", err)
	}
	defer f.Close()
	return LoadBible(f)
}

// DefaultHymnal returns the hymnal bundled with the binary.
func DefaultHymnal() (*Hymnal, error) {
	f, err := embeddedAssets.Open("assets/hymnal.json")
	if err != nil {
		return nil, fmt.Errorf("open embedded hymnal: %w", err)
	}
	defer f.Close()
	return LoadHymnal(f)
}

// OpenBible loads the Bible at path, or the bundled one when path is empty.
func OpenBible(path string) (*Bible, error) {
	if path == "" {
		return DefaultBible()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bible: %w", err)
	}
	defer f.Close()
	return LoadBible(f)
}

// OpenHymnal loads the hymnal at path, or the bundled one when path is empty.
func OpenHymnal(path string) (*Hymnal, error) {
	if path == "" {
		return DefaultHymnal()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hymnal: %w", err)
	}
	defer f.Close()
	return LoadHymnal(f)
}
