// FILE: internal/server/processor/task.go
package processor

import (
	"context"
	"errors"
)

// ErrBusy is returned by TryAcquire while a previous task still holds the worker
var ErrBusy = errors.New("a task is already in progress")

// Task is one unit of background work, tagged with the refresh run it serves
type Task struct {
	RunID string
	Run   func(ctx context.Context)
}
