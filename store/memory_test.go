package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sicko7947/gorkrepair"
)

func testWorkflow() *gorkrepair.Workflow {
	return &gorkrepair.Workflow{
		ID:     "w1",
		Status: gorkrepair.WorkflowStatusRunning,
		Tasks: []*gorkrepair.Task{
			{ID: "t1", WorkflowInstanceID: "w1", Type: "SIMPLE", DefinitionName: "encode", Status: gorkrepair.TaskStatusCompleted, Seq: 1},
			{ID: "t2", WorkflowInstanceID: "w1", Type: "SIMPLE", DefinitionName: "publish", Status: gorkrepair.TaskStatusScheduled, Seq: 2},
		},
	}
}

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}

	// Verify it implements the interface
	var _ gorkrepair.ExecutionStore = store
}

func TestMemoryStore_GetWorkflow_WithTasks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveWorkflow(testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow() failed: %v", err)
	}

	wf, err := store.GetWorkflow(ctx, "w1", true)
	if err != nil {
		t.Fatalf("GetWorkflow() failed: %v", err)
	}

	if wf.Status != gorkrepair.WorkflowStatusRunning {
		t.Errorf("Status = %s, want RUNNING", wf.Status)
	}
	if len(wf.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(wf.Tasks))
	}
	if wf.Tasks[0].ID != "t1" || wf.Tasks[1].ID != "t2" {
		t.Errorf("Tasks out of stored order: %s, %s", wf.Tasks[0].ID, wf.Tasks[1].ID)
	}
}

func TestMemoryStore_GetWorkflow_WithoutTasks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveWorkflow(testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow() failed: %v", err)
	}

	wf, err := store.GetWorkflow(ctx, "w1", false)
	if err != nil {
		t.Fatalf("GetWorkflow() failed: %v", err)
	}
	if len(wf.Tasks) != 0 {
		t.Errorf("len(Tasks) = %d, want 0 when tasks not requested", len(wf.Tasks))
	}
}

func TestMemoryStore_GetWorkflow_NotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetWorkflow(ctx, "non-existent", true)
	if err == nil {
		t.Fatal("GetWorkflow() with non-existent ID should have failed")
	}
	if !errors.Is(err, gorkrepair.ErrWorkflowNotFound) {
		t.Errorf("GetWorkflow() error = %v, want ErrWorkflowNotFound", err)
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	wf := testWorkflow()
	if err := store.SaveWorkflow(wf); err != nil {
		t.Fatalf("SaveWorkflow() failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store
	wf.Status = gorkrepair.WorkflowStatusCompleted
	wf.Tasks[1].Status = gorkrepair.TaskStatusInProgress

	got, err := store.GetWorkflow(ctx, "w1", true)
	if err != nil {
		t.Fatalf("GetWorkflow() failed: %v", err)
	}
	if got.Status != gorkrepair.WorkflowStatusRunning {
		t.Errorf("Status = %s, want RUNNING", got.Status)
	}
	if got.Tasks[1].Status != gorkrepair.TaskStatusScheduled {
		t.Errorf("Task status = %s, want SCHEDULED", got.Tasks[1].Status)
	}

	// Nor may mutating a returned snapshot
	got.Tasks[1].Status = gorkrepair.TaskStatusCompleted
	again, _ := store.GetWorkflow(ctx, "w1", true)
	if again.Tasks[1].Status != gorkrepair.TaskStatusScheduled {
		t.Errorf("Task status = %s after snapshot mutation, want SCHEDULED", again.Tasks[1].Status)
	}
}

func TestMemoryStore_SaveWorkflow_Invalid(t *testing.T) {
	store := NewMemoryStore()

	if err := store.SaveWorkflow(nil); err == nil {
		t.Error("SaveWorkflow(nil) should have failed")
	}
	if err := store.SaveWorkflow(&gorkrepair.Workflow{}); err == nil {
		t.Error("SaveWorkflow() without id should have failed")
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetWorkflow(ctx, "w1", false); !errors.Is(err, context.Canceled) {
		t.Errorf("GetWorkflow() error = %v, want context.Canceled", err)
	}
}
