// Package download walks the scripture catalog and populates the local
// store so the whole corpus is readable offline.
package download

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bible"
	"github.com/davialcantara/selah/internal/bus"
	"github.com/davialcantara/selah/internal/remote"
	"github.com/davialcantara/selah/internal/store"
)

// Fetcher retrieves chapters from the remote content API.
type Fetcher interface {
	FetchChapter(ctx context.Context, translation, book string, chapter int) (*remote.Chapter, error)
}

// Progress is the payload of download.progress events.
type Progress struct {
	Translation    string
	Percent        int
	ProcessedUnits int
	TotalUnits     int
	FailedUnits    int
}

// Orchestrator downloads one translation chapter by chapter, in canonical
// catalog order, with a fixed delay between fetches. The delay is a
// deliberate throttle for the backend's rate limits, not an accident.
type Orchestrator struct {
	db         *store.DB
	fetcher    Fetcher
	bus        *bus.Bus
	logger     *zap.Logger
	catalog    []bible.Book
	delay      time.Duration
	onProgress func(percent int)
}

// NewOrchestrator creates an orchestrator over the given catalog, normally
// bible.Canon.
func NewOrchestrator(db *store.DB, fetcher Fetcher, b *bus.Bus, logger *zap.Logger, catalog []bible.Book, delay time.Duration) *Orchestrator {
	return &Orchestrator{
		db:      db,
		fetcher: fetcher,
		bus:     b,
		logger:  logger,
		catalog: catalog,
		delay:   delay,
	}
}

// OnProgress registers an optional callback invoked once per processed unit
// with the rounded percentage (0-100, non-decreasing within a run). Event
// subscribers get the same information from download.progress.
func (o *Orchestrator) OnProgress(fn func(percent int)) {
	o.onProgress = fn
}

// Run downloads the whole catalog for one translation. The run is
// best-effort: a failed chapter is logged, counted and skipped, and the
// translation is still marked fully cached at the end. Re-running overwrites
// existing entries, so a run is safe to repeat or resume. Cancelling the
// context stops between chapters; progress persisted so far is kept.
func (o *Orchestrator) Run(ctx context.Context, translation string) (*store.DownloadMeta, error) {
	meta := &store.DownloadMeta{
		Translation: translation,
		TotalUnits:  bible.TotalChapters(o.catalog),
	}
	if err := o.db.PutDownloadMeta(meta); err != nil {
		return nil, err
	}

	o.logger.Info("corpus download started",
		zap.String("translation", translation),
		zap.Int("total_units", meta.TotalUnits),
	)

	for _, book := range o.catalog {
		for chapter := 1; chapter <= book.Chapters; chapter++ {
			if err := ctx.Err(); err != nil {
				o.logger.Info("corpus download cancelled",
					zap.String("translation", translation),
					zap.Int("processed_units", meta.ProcessedUnits),
				)
				return meta, err
			}

			if err := o.fetchOne(ctx, translation, book.ID, chapter); err != nil {
				if isStorage(err) {
					return meta, err
				}
				meta.FailedUnits++
				o.logger.Warn("chapter fetch failed, skipping",
					zap.String("book", book.ID),
					zap.Int("chapter", chapter),
					zap.Error(err),
				)
			}

			meta.ProcessedUnits++
			if err := o.db.PutDownloadMeta(meta); err != nil {
				return meta, err
			}
			o.report(meta)

			if meta.ProcessedUnits < meta.TotalUnits && o.delay > 0 {
				select {
				case <-time.After(o.delay):
				case <-ctx.Done():
				}
			}
		}
	}

	meta.FullyCached = true
	if err := o.db.PutDownloadMeta(meta); err != nil {
		return meta, err
	}

	o.logger.Info("corpus download completed",
		zap.String("translation", translation),
		zap.Int("processed_units", meta.ProcessedUnits),
		zap.Int("failed_units", meta.FailedUnits),
	)
	if o.bus != nil {
		o.bus.Publish(bus.Event{
			Kind:      "download.completed",
			Timestamp: time.Now(),
			Payload:   *meta,
		})
	}
	return meta, nil
}

func (o *Orchestrator) fetchOne(ctx context.Context, translation, bookID string, chapter int) error {
	fetched, err := o.fetcher.FetchChapter(ctx, translation, bookID, chapter)
	if err != nil {
		return err
	}

	ch := &store.Chapter{Translation: translation, Book: bookID, Number: chapter}
	for _, v := range fetched.Verses {
		ch.Verses = append(ch.Verses, store.Verse{
			Translation: translation,
			Book:        bookID,
			Chapter:     chapter,
			Number:      v.Number,
			Text:        v.Text,
		})
	}
	return o.db.PutChapter(ch)
}

func (o *Orchestrator) report(meta *store.DownloadMeta) {
	percent := int(math.Round(float64(meta.ProcessedUnits) / float64(meta.TotalUnits) * 100))
	if o.onProgress != nil {
		o.onProgress(percent)
	}
	if o.bus != nil {
		o.bus.Publish(bus.Event{
			Kind:      "download.progress",
			Timestamp: time.Now(),
			Payload: Progress{
				Translation:    meta.Translation,
				Percent:        percent,
				ProcessedUnits: meta.ProcessedUnits,
				TotalUnits:     meta.TotalUnits,
				FailedUnits:    meta.FailedUnits,
			},
		})
	}
}

func isStorage(err error) bool {
	return errors.Is(err, store.ErrStorageUnavailable)
}
