package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/fellowship/internal/config"
	"github.com/mrlokans/fellowship/internal/database"
	"github.com/mrlokans/fellowship/internal/devotional"
	"github.com/mrlokans/fellowship/internal/entrypoint"
)

// SyncCommand fetches devotionals from the church API into the local cache.
type SyncCommand struct {
	DatabasePath string
	APIURL       string
	Date         string
	Timeout      time.Duration
	Verbose      bool

	cfg *config.Config
}

func NewSyncCommand(cfg *config.Config) *SyncCommand {
	return &SyncCommand{cfg: cfg}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&cmd.APIURL, "api", cmd.cfg.API.URL, "Base URL of the church API")
	fs.StringVar(&cmd.Date, "date", "", "Sync only the devotional for this date (YYYY-MM-DD)")
	fs.DurationVar(&cmd.Timeout, "timeout", cmd.cfg.DevotionalSync.Timeout, "Maximum duration of the sync")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every cached devotional")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch devotionals from the church API into the local cache.\n")
		fmt.Fprintf(os.Stderr, "Cached devotionals stay readable offline; nothing is removed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -date 2024-03-01\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if cmd.APIURL == "" {
		return fmt.Errorf("required flag -api not provided")
	}
	if cmd.Date != "" {
		if _, err := time.Parse("2006-01-02", cmd.Date); err != nil {
			return fmt.Errorf("invalid -date %q: %w", cmd.Date, devotional.ErrInvalidDate)
		}
	}
	return nil
}

func (cmd *SyncCommand) Run() error {
	fmt.Println("Devotional Sync")
	fmt.Println("===============")
	fmt.Printf("API: %s\n", cmd.APIURL)
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	apiCfg := *cmd.cfg
	apiCfg.API.URL = cmd.APIURL
	store := entrypoint.NewDevotionalStore(db, entrypoint.NewAPIClient(&apiCfg))

	ctx := context.Background()
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	if cmd.Date != "" {
		d, err := store.SyncDate(ctx, cmd.Date)
		if err != nil {
			return err
		}
		fmt.Printf("\nCached %s devotional for %s: %s\n", d.Program, d.Date, devotional.Decode(d).Topic)
		return nil
	}

	result, err := store.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s finished in %v\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Fetched: %d\n", result.Fetched)
	fmt.Printf("  Stored:  %d\n", result.Stored)
	fmt.Printf("  Failed:  %d\n", result.Failed)

	if cmd.Verbose {
		fmt.Println("\n=== Cached Programs ===")
		for _, program := range store.Programs(ctx) {
			dates := store.Dates(ctx, program, "")
			fmt.Printf("%s (%d days)\n", program, len(dates))
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d devotionals could not be cached", result.Failed, result.Fetched)
	}
	return nil
}
