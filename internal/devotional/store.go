// Package devotional keeps a local cache of daily-study devotionals and
// reconciles it against the church API.
//
// The cache only grows or is overwritten: a sync upserts every record the
// API returns and never deletes rows the API stopped returning. Local
// storage failures are logged and degrade to empty results or a false
// return; only a failed fetch from the API is reported as an error.
package devotional

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/fellowship/internal/churchapi"
	"github.com/mrlokans/fellowship/internal/database/devotionals"
	"github.com/mrlokans/fellowship/internal/entities"
	"github.com/mrlokans/fellowship/internal/metrics"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

var (
	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")
	// ErrNoDevotional indicates the API has no devotional for the requested date.
	ErrNoDevotional = errors.New("no devotional published for date")
	// ErrStoreFailed indicates a fetched record could not be written to the cache.
	ErrStoreFailed = errors.New("failed to store devotional")
)

// Remote is the source of devotional records.
type Remote interface {
	ListDevotionals(ctx context.Context) ([]churchapi.DevotionalData, error)
	GetDevotional(ctx context.Context, date string) (*churchapi.DevotionalData, error)
}

// ProgressReporter receives progress of a running sync.
type ProgressReporter interface {
	StartSync(ctx context.Context, runID string, totalItems int) error
	UpdateProgress(ctx context.Context, runID string, processed, succeeded, failed int, currentItem string) error
	CompleteSync(ctx context.Context, runID string, succeeded bool, errorMsg string) error
}

// StatusRecorder persists the outcome of the last sync.
type StatusRecorder interface {
	SetSettings(values map[string]string) error
}

// SyncResult summarises one sync run.
type SyncResult struct {
	RunID    string        `json:"run_id"`
	Fetched  int           `json:"fetched"`
	Stored   int           `json:"stored"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Option configures a Store.
type Option func(*Store)

// WithProgress reports sync progress to p.
func WithProgress(p ProgressReporter) Option {
	return func(s *Store) { s.progress = p }
}

// WithStatus records the outcome of each sync to r.
func WithStatus(r StatusRecorder) Option {
	return func(s *Store) { s.status = r }
}

// Store is the devotional cache.
type Store struct {
	cache    *devotionals.Repository
	remote   Remote
	progress ProgressReporter
	status   StatusRecorder
	now      func() time.Time
}

// NewStore creates a store over cache that syncs from remote.
func NewStore(cache *devotionals.Repository, remote Remote, opts ...Option) *Store {
	s := &Store{
		cache:  cache,
		remote: remote,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize ensures the cache table exists. Repeated calls are no-ops.
func (s *Store) Initialize(ctx context.Context) error {
	return s.cache.Initialize(ctx)
}

// Upsert writes d to the cache, replacing any row with the same id.
// Text fields are stored with line breaks encoded. Records without a
// positive id are rejected. Failures are logged and reported as false.
func (s *Store) Upsert(ctx context.Context, d entities.Devotional) bool {
	if d.ID <= 0 {
		log.Printf("Devotional store: skipping %s devotional for %q without an id", d.Program, d.Date)
		return false
	}
	if err := s.Initialize(ctx); err != nil {
		log.Printf("Devotional store: %v", err)
		return false
	}

	row := encode(d)
	if err := s.cache.Upsert(ctx, &row); err != nil {
		log.Printf("Devotional store: failed to upsert devotional %d: %v", d.ID, err)
		return false
	}
	return true
}

// QueryByProgram returns the program's devotionals newest first. A non-empty
// month in YYYY-MM form limits the result to that month. Errors and an
// invalid month yield an empty slice.
func (s *Store) QueryByProgram(ctx context.Context, program, month string) []entities.Devotional {
	if month != "" {
		if _, err := time.Parse(monthLayout, month); err != nil {
			log.Printf("Devotional store: ignoring query with invalid month %q", month)
			return []entities.Devotional{}
		}
	}
	if err := s.Initialize(ctx); err != nil {
		log.Printf("Devotional store: %v", err)
		return []entities.Devotional{}
	}

	rows, err := s.cache.ByProgram(ctx, program, month)
	if err != nil {
		log.Printf("Devotional store: failed to query program %q: %v", program, err)
		return []entities.Devotional{}
	}
	if rows == nil {
		rows = []entities.Devotional{}
	}
	return rows
}

// QueryByProgramAndDate returns the devotional for program on date.
// When several rows share program and date, the one with the highest id wins.
func (s *Store) QueryByProgramAndDate(ctx context.Context, program, date string) (entities.Devotional, bool) {
	if err := s.Initialize(ctx); err != nil {
		log.Printf("Devotional store: %v", err)
		return entities.Devotional{}, false
	}

	row, err := s.cache.ByProgramAndDate(ctx, program, date)
	if err != nil {
		if !devotionals.IsNotFound(err) {
			log.Printf("Devotional store: failed to query %q on %s: %v", program, date, err)
		}
		return entities.Devotional{}, false
	}
	return *row, true
}

// Dates returns the distinct dates with a devotional for program, newest first.
func (s *Store) Dates(ctx context.Context, program, month string) []string {
	rows := s.QueryByProgram(ctx, program, month)
	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(dates) > 0 && dates[len(dates)-1] == row.Date {
			continue
		}
		dates = append(dates, row.Date)
	}
	return dates
}

// Programs returns the program names present in the cache.
func (s *Store) Programs(ctx context.Context) []string {
	if err := s.Initialize(ctx); err != nil {
		log.Printf("Devotional store: %v", err)
		return []string{}
	}

	names, err := s.cache.Programs(ctx)
	if err != nil {
		log.Printf("Devotional store: failed to list programs: %v", err)
		return []string{}
	}
	if names == nil {
		names = []string{}
	}
	return names
}

// Sync fetches the full remote collection and upserts every record in order.
// A failed fetch is returned as an error; individual write failures are
// counted in the result and do not stop the run.
func (s *Store) Sync(ctx context.Context) (SyncResult, error) {
	started := s.now()
	result := SyncResult{RunID: uuid.NewString()}

	if err := s.Initialize(ctx); err != nil {
		err = fmt.Errorf("failed to initialize devotional cache: %w", err)
		s.finish(ctx, &result, started, err)
		return result, err
	}

	// The total is unknown until the fetch returns.
	s.reportStart(ctx, result.RunID, 0)

	log.Printf("Devotional sync: run %s fetching devotionals", result.RunID)
	records, err := s.remote.ListDevotionals(ctx)
	if err != nil {
		err = fmt.Errorf("failed to fetch devotionals: %w", err)
		s.finish(ctx, &result, started, err)
		return result, err
	}
	result.Fetched = len(records)
	s.reportStart(ctx, result.RunID, len(records))

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("sync interrupted after %d of %d records: %w", i, len(records), err)
			s.finish(ctx, &result, started, err)
			return result, err
		}

		if s.Upsert(ctx, fromRemote(record)) {
			result.Stored++
		} else {
			result.Failed++
		}
		s.reportProgress(ctx, result.RunID, i+1, result.Stored, result.Failed, record.Date)
	}

	s.finish(ctx, &result, started, nil)
	return result, nil
}

// SyncDate fetches the devotional published for date and caches it.
func (s *Store) SyncDate(ctx context.Context, date string) (entities.Devotional, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return entities.Devotional{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	record, err := s.remote.GetDevotional(ctx, date)
	if errors.Is(err, churchapi.ErrNotFound) {
		return entities.Devotional{}, fmt.Errorf("%w: %s", ErrNoDevotional, date)
	}
	if err != nil {
		return entities.Devotional{}, fmt.Errorf("failed to fetch devotional for %s: %w", date, err)
	}

	d := fromRemote(*record)
	if !s.Upsert(ctx, d) {
		return entities.Devotional{}, fmt.Errorf("%w %d", ErrStoreFailed, d.ID)
	}
	return encode(d), nil
}

// Decode returns d with its text fields decoded for display.
func Decode(d entities.Devotional) entities.Devotional {
	d.Topic = DecodeText(d.Topic)
	d.Content = DecodeText(d.Content)
	return d
}

func encode(d entities.Devotional) entities.Devotional {
	d.Topic = EncodeText(d.Topic)
	d.Content = EncodeText(d.Content)
	return d
}

func fromRemote(r churchapi.DevotionalData) entities.Devotional {
	return entities.Devotional{
		ID:        r.ID,
		Program:   r.Program,
		Date:      r.Date,
		Topic:     r.Topic,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Store) reportStart(ctx context.Context, runID string, total int) {
	if s.progress == nil {
		return
	}
	if err := s.progress.StartSync(ctx, runID, total); err != nil {
		log.Printf("Devotional sync: failed to record progress: %v", err)
	}
}

func (s *Store) reportProgress(ctx context.Context, runID string, processed, stored, failed int, item string) {
	if s.progress == nil {
		return
	}
	if err := s.progress.UpdateProgress(ctx, runID, processed, stored, failed, item); err != nil {
		log.Printf("Devotional sync: failed to record progress: %v", err)
	}
}

func (s *Store) finish(ctx context.Context, result *SyncResult, started time.Time, syncErr error) {
	result.Duration = s.now().Sub(started)

	status := "success"
	message := fmt.Sprintf("Stored %d of %d devotionals in %v",
		result.Stored, result.Fetched, result.Duration.Round(time.Millisecond))
	if result.Failed > 0 {
		message += fmt.Sprintf(" (%d failed)", result.Failed)
	}
	if syncErr != nil {
		status = "failed"
		message = syncErr.Error()
	}
	log.Printf("Devotional sync: run %s %s: %s", result.RunID, status, message)

	metrics.RecordSync(status, result.Stored, result.Failed, result.Duration.Seconds())

	if s.progress != nil {
		errMsg := ""
		if syncErr != nil {
			errMsg = message
		}
		if err := s.progress.CompleteSync(context.WithoutCancel(ctx), result.RunID, syncErr == nil, errMsg); err != nil {
			log.Printf("Devotional sync: failed to record progress: %v", err)
		}
	}

	if s.status != nil {
		err := s.status.SetSettings(map[string]string{
			entities.SettingKeyDevotionalSyncLastAt:      s.now().UTC().Format(time.RFC3339),
			entities.SettingKeyDevotionalSyncLastStatus:  status,
			entities.SettingKeyDevotionalSyncLastMessage: message,
		})
		if err != nil {
			log.Printf("Devotional sync: failed to record status: %v", err)
		}
	}
}
