// Package pagination provides the serial scheduling primitives used to walk
// GitHub cursor pagination and to run bulk fetches for one subject.
//
// GitHub's abuse detection flags clients that fire many concurrent requests
// for the same resource, so nothing in this package runs work in parallel:
// every page or task completes before the next one starts.
//
// Walking a cursor:
//
//	items, err := pagination.Collect(ctx, "GetUserGists", req.HasNextPage,
//		func(ctx context.Context) ([]Gist, bool, error) {
//			return fetchOnePage(ctx, req)
//		})
//
// Running a bulk fetch month by month:
//
//	tasks := make([]pagination.Task[Monthly], 0, 12)
//	for month := time.January; month <= time.December; month++ {
//		tasks = append(tasks, monthTask(month))
//	}
//	months, err := pagination.Sequential(ctx, tasks...)
//
// Collect returns a nil slice when the first page is not found. When a later
// page is not found, the pages collected so far are returned without error.
package pagination
