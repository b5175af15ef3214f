// Package systask classifies task types as orchestrator system tasks.
package systask

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sicko7947/gorkrepair"
)

// Task is a registered system task type
type Task struct {
	TaskName string
	Async    bool
}

// Name returns the task type
func (t Task) Name() string { return t.TaskName }

// IsAsync reports whether the task is dispatched via its queue
func (t Task) IsAsync() bool { return t.Async }

// SyncTask declares a system task executed inline by the decider
func SyncTask(name string) Task { return Task{TaskName: name} }

// AsyncTask declares a system task dispatched through its task queue
func AsyncTask(name string) Task { return Task{TaskName: name, Async: true} }

// Registry is a concurrency-safe map of system task types
type Registry struct {
	tasks map[string]Task
	mu    sync.RWMutex
}

var _ gorkrepair.SystemTaskRegistry = (*Registry)(nil)

// NewRegistry creates a registry holding tasks
func NewRegistry(tasks ...Task) *Registry {
	r := &Registry{tasks: make(map[string]Task, len(tasks))}
	for _, t := range tasks {
		r.Register(t)
	}
	return r
}

// Builtin returns a registry of the orchestrator's own system tasks
func Builtin() *Registry {
	return NewRegistry(
		SyncTask("DECISION"),
		SyncTask("SWITCH"),
		SyncTask("FORK"),
		SyncTask("FORK_JOIN"),
		SyncTask("FORK_JOIN_DYNAMIC"),
		SyncTask("JOIN"),
		SyncTask("EXCLUSIVE_JOIN"),
		SyncTask("DO_WHILE"),
		SyncTask("WAIT"),
		SyncTask("TERMINATE"),
		SyncTask("LAMBDA"),
		SyncTask("SET_VARIABLE"),
		SyncTask("JSON_JQ_TRANSFORM"),
		AsyncTask("HTTP_POLL"),
		AsyncTask("EVENT"),
		AsyncTask("SUB_WORKFLOW"),
		AsyncTask("KAFKA_PUBLISH"),
	)
}

// Register adds or replaces a system task type
func (r *Registry) Register(t Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.TaskName] = t
}

// IsSystemTask reports whether taskType is registered
func (r *Registry) IsSystemTask(taskType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[taskType]
	return ok
}

// Get returns the registered system task for taskType
func (r *Registry) Get(taskType string) (gorkrepair.SystemTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[taskType]
	if !ok {
		return nil, false
	}
	return t, true
}

// Names returns the registered task types in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply registers every entry of a file config, overriding existing types
func (r *Registry) Apply(entries []gorkrepair.SystemTaskConfig) {
	for _, e := range entries {
		r.Register(Task{TaskName: e.Name, Async: e.Async})
	}
}

// LoadYAML registers a YAML list of {name, async} entries
func (r *Registry) LoadYAML(data []byte) error {
	var entries []gorkrepair.SystemTaskConfig
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse system tasks: %w", err)
	}
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("system task entry %d has no name", i)
		}
	}
	r.Apply(entries)
	return nil
}
