package store

import "fmt"

// DynamoDB schema constants for single-table design
const (
	// Table attributes
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrEntityType = "entity_type"

	// Entity types
	EntityTypeWorkflow = "Workflow"
	EntityTypeTask     = "Task"
)

// Workflow keys: PK=WF#{workflowID}, SK=META
func workflowPK(workflowID string) string {
	return fmt.Sprintf("WF#%s", workflowID)
}

func workflowSK() string {
	return "META"
}

// Task keys: PK=WF#{workflowID}, SK=TASK#{seq}#{taskID}
// seq is zero padded so range order matches stored task order.
func taskSK(seq int, taskID string) string {
	return fmt.Sprintf("%s%06d#%s", taskPrefix(), seq, taskID)
}

func taskPrefix() string {
	return "TASK#"
}
