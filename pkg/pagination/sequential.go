package pagination

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Task is one unit of a bulk fetch.
type Task[T any] func(ctx context.Context) (T, error)

// Sequential runs tasks one after another, never starting a task before the
// previous one has returned. It stops at the first error or when ctx is done
// and returns the results gathered up to that point together with the task's
// error, unwrapped.
func Sequential[T any](ctx context.Context, tasks ...Task[T]) ([]T, error) {
	results := make([]T, 0, len(tasks))

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := task(ctx)
		if err != nil {
			log.Debug().Err(err).Int("task", i+1).Int("tasks", len(tasks)).Msg("Sequential fetch stopped")
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}
