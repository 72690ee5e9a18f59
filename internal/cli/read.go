package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/fellowship/internal/config"
	"github.com/mrlokans/fellowship/internal/content"
	"github.com/mrlokans/fellowship/internal/entrypoint"
	"github.com/mrlokans/fellowship/internal/tui"
)

// ReadCommand opens the terminal reader on a chapter.
type ReadCommand struct {
	Book      string
	Chapter   int
	BiblePath string
	List      bool

	cfg *config.Config
}

func NewReadCommand(cfg *config.Config) *ReadCommand {
	return &ReadCommand{cfg: cfg}
}

func (cmd *ReadCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)

	fs.StringVar(&cmd.Book, "book", "", "Book abbreviation, name or number (required unless -list)")
	fs.IntVar(&cmd.Chapter, "chapter", 1, "Chapter number, starting at 1")
	fs.StringVar(&cmd.BiblePath, "bible", cmd.cfg.Content.BiblePath, "Path to a Bible JSON file (default: bundled)")
	fs.BoolVar(&cmd.List, "list", false, "List books and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s read -book <book> [-chapter <n>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Read a chapter in the terminal with read-aloud controls.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s read -book gn -chapter 1\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s read -list\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.List {
		return nil
	}
	if cmd.Book == "" {
		return fmt.Errorf("required flag -book not provided")
	}
	if cmd.Chapter < 1 {
		return fmt.Errorf("-chapter must be at least 1")
	}
	return nil
}

// Position resolves the selected book and chapter.
func (cmd *ReadCommand) Position(bible *content.Bible) (content.Position, error) {
	book, err := bible.FindBook(cmd.Book)
	if err != nil {
		return content.Position{}, err
	}
	pos := content.Position{Book: book, Chapter: cmd.Chapter - 1}
	if _, err := bible.Chapter(pos); err != nil {
		return content.Position{}, err
	}
	return pos, nil
}

func (cmd *ReadCommand) Run() error {
	bible, err := content.OpenBible(cmd.BiblePath)
	if err != nil {
		return err
	}

	if cmd.List {
		for _, b := range bible.Books() {
			fmt.Printf("%3d  %-6s %s (%d chapters)\n", b.Index+1, b.Abbrev, b.Name, b.Chapters)
		}
		return nil
	}

	pos, err := cmd.Position(bible)
	if err != nil {
		return err
	}

	player := entrypoint.NewReadAloud(cmd.cfg)
	return tui.Run(bible, player, pos)
}
