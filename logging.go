package gorkrepair

import (
	"github.com/rs/zerolog"
)

// Log event names
const (
	EventRepairStarted   = "repair_started"
	EventRepairCompleted = "repair_completed"
	EventDeciderRepushed = "decider_repushed"
	EventDeciderSkipped  = "decider_skipped"
	EventTaskRepushed    = "task_repushed"
	EventTaskSkipped     = "task_skipped"
	EventBackendError    = "repair_backend_error"
)

// LogRepairStarted logs when verification of a workflow begins
func LogRepairStarted(logger zerolog.Logger, workflowID string, includeTasks bool) {
	logger.Debug().
		Str("event", EventRepairStarted).
		Str("workflow_id", workflowID).
		Bool("include_tasks", includeTasks).
		Msg("Verifying workflow against queues")
}

// LogRepairCompleted logs the outcome of one verification
func LogRepairCompleted(logger zerolog.Logger, workflowID string, repaired bool) {
	logger.Debug().
		Str("event", EventRepairCompleted).
		Str("workflow_id", workflowID).
		Bool("repaired", repaired).
		Msg("Workflow verification completed")
}

// LogDeciderRepushed logs a workflow id pushed back onto the decider queue
func LogDeciderRepushed(logger zerolog.Logger, workflowID, queueName string, delaySeconds int64) {
	logger.Info().
		Str("event", EventDeciderRepushed).
		Str("workflow_id", workflowID).
		Str("queue", queueName).
		Int64("delay_seconds", delaySeconds).
		Msg("Workflow re-pushed to decider queue")
}

// LogDeciderSkipped logs a workflow whose status keeps it off the decider queue
func LogDeciderSkipped(logger zerolog.Logger, workflowID string, status WorkflowStatus, reason string) {
	logger.Debug().
		Str("event", EventDeciderSkipped).
		Str("workflow_id", workflowID).
		Str("status", status.String()).
		Str("reason", reason).
		Msg("Decider queue check skipped")
}

// LogTaskRepushed logs a task id pushed back onto its task queue
func LogTaskRepushed(logger zerolog.Logger, workflowID, taskID, queueName string, delaySeconds int64) {
	logger.Info().
		Str("event", EventTaskRepushed).
		Str("workflow_id", workflowID).
		Str("task_id", taskID).
		Str("queue", queueName).
		Int64("delay_seconds", delaySeconds).
		Msg("Task re-pushed to task queue")
}

// LogTaskSkipped logs a task left off its task queue
func LogTaskSkipped(logger zerolog.Logger, taskID, taskType, reason string) {
	logger.Debug().
		Str("event", EventTaskSkipped).
		Str("task_id", taskID).
		Str("task_type", taskType).
		Str("reason", reason).
		Msg("Task skipped")
}

// LogBackendError logs a store or queue failure surfaced to the caller
func LogBackendError(logger zerolog.Logger, workflowID, operation string, err error) {
	logger.Error().
		Str("event", EventBackendError).
		Str("workflow_id", workflowID).
		Str("operation", operation).
		Err(err).
		Msg("Repair backend error")
}

// RepairLogger creates a logger tagged with the id of one repair invocation
func RepairLogger(baseLogger zerolog.Logger, repairID string) zerolog.Logger {
	return baseLogger.With().
		Str("repair_id", repairID).
		Logger()
}
