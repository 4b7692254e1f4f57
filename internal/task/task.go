// Package task tracks crawl runs from submission to completion and
// exposes their state to the HTTP API and CLI.
package task

import (
	"errors"
	"sync"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/crawler"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is the registry's record of one crawl run. Mutated only through
// the registry so readers always see a consistent view.
type Task struct {
	ID        string
	Mode      types.Mode
	SeedURL   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	Preview   []types.PageSummary
	ResultDir string
	PageCount int
	Error     string

	// progress reads the live traversal state while the task runs.
	progress func() crawler.Progress
}

// Snapshot is the external view of a task, shaped for the status API.
type Snapshot struct {
	ID        string              `json:"task_id"`
	Mode      types.Mode          `json:"mode"`
	Status    Status              `json:"status"`
	SeedURL   string              `json:"seed_url"`
	Progress  *crawler.Progress   `json:"progress,omitempty"`
	Preview   []types.PageSummary `json:"preview,omitempty"`
	ResultDir string              `json:"result_dir,omitempty"`
	PageCount int                 `json:"page_count,omitempty"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Registry is an in-memory task store safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Add registers a new task.
func (r *Registry) Add(t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tasks[t.ID] = t
}

// Update applies fn to the task under the write lock.
func (r *Registry) Update(id string, fn func(*Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

// Snapshot returns the current state of a task without blocking a
// running crawl.
func (r *Registry) Snapshot(id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Snapshot{}, ErrTaskNotFound
	}

	snap := Snapshot{
		ID:        t.ID,
		Mode:      t.Mode,
		Status:    t.Status,
		SeedURL:   t.SeedURL,
		Preview:   t.Preview,
		ResultDir: t.ResultDir,
		PageCount: t.PageCount,
		Error:     t.Error,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Status == StatusRunning && t.progress != nil {
		p := t.progress()
		snap.Progress = &p
	}
	return snap, nil
}
