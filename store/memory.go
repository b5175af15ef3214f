package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sicko7947/gorkrepair"
)

// MemoryStore implements gorkrepair.ExecutionStore using in-memory storage (for testing)
type MemoryStore struct {
	workflows map[string]*gorkrepair.Workflow
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory execution store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: make(map[string]*gorkrepair.Workflow),
	}
}

var _ gorkrepair.ExecutionStore = (*MemoryStore)(nil)

// SaveWorkflow creates or replaces a workflow together with its tasks
func (s *MemoryStore) SaveWorkflow(wf *gorkrepair.Workflow) error {
	if wf == nil || wf.ID == "" {
		return fmt.Errorf("workflow must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflows[wf.ID] = copyWorkflow(wf, true)
	return nil
}

// GetWorkflow returns a deep copy of the workflow; tasks only when requested
func (s *MemoryStore) GetWorkflow(ctx context.Context, workflowID string, includeTasks bool) (*gorkrepair.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, exists := s.workflows[workflowID]
	if !exists {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, gorkrepair.ErrWorkflowNotFound)
	}

	return copyWorkflow(wf, includeTasks), nil
}

// Deep copy
func copyWorkflow(wf *gorkrepair.Workflow, includeTasks bool) *gorkrepair.Workflow {
	wfCopy := *wf
	wfCopy.Tasks = nil
	if !includeTasks {
		return &wfCopy
	}

	wfCopy.Tasks = make([]*gorkrepair.Task, 0, len(wf.Tasks))
	for _, task := range wf.Tasks {
		taskCopy := *task
		wfCopy.Tasks = append(wfCopy.Tasks, &taskCopy)
	}
	return &wfCopy
}
