package schedule

import "context"

// Source loads the schedule from external storage. Implementations must
// return a fresh read on every call; the pipeline never caches schedules
// across cycles.
type Source interface {
	Load(ctx context.Context) (Schedule, error)
}
