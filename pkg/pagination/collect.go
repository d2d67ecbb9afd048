package pagination

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PageFunc fetches one page. found is false when the subject does not exist.
type PageFunc[T any] func(ctx context.Context) (items []T, found bool, err error)

// progressEvery controls how often long walks log their progress.
const progressEvery = 10

// Collect fetches the first page and keeps fetching while hasNext reports
// more pages, appending results in order.
//
// It returns nil when the first page is not found. A later page that is not
// found ends the walk early and the collected items are returned. On error
// the items collected so far are returned alongside it.
func Collect[T any](ctx context.Context, operation string, hasNext func() bool, next PageFunc[T]) ([]T, error) {
	start := time.Now()

	first, found, err := next(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debug().
			Str("operation", operation).
			Msg("First page not found")
		return nil, nil
	}

	results := make([]T, 0, len(first))
	results = append(results, first...)
	pages := 1

	for hasNext() {
		items, found, err := next(ctx)
		if err != nil {
			log.Warn().
				Err(err).
				Str("operation", operation).
				Int("page", pages+1).
				Int("items", len(results)).
				Msg("Page fetch failed - returning partial results")
			return results, err
		}
		if !found {
			log.Warn().
				Str("operation", operation).
				Int("page", pages+1).
				Int("items", len(results)).
				Msg("Page disappeared mid-walk - returning partial results")
			break
		}

		results = append(results, items...)
		pages++

		if pages%progressEvery == 0 {
			log.Info().
				Str("operation", operation).
				Int("pages", pages).
				Int("items", len(results)).
				Msg("Pagination progress")
		}
	}

	log.Debug().
		Str("operation", operation).
		Int("pages", pages).
		Int("items", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Pagination complete")

	return results, nil
}
