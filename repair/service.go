// Package repair keeps the execution store and the queue layer in agreement
// for a single workflow: a RUNNING workflow missing from the decider queue, or a
// SCHEDULED queue-dispatched task missing from its task queue, is pushed back.
//
// The service expects the queue layer to answer Contains reliably. Deployments
// whose queue layer cannot should not wire it.
package repair

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sicko7947/gorkrepair"
	"github.com/sicko7947/gorkrepair/metrics"
)

// Service verifies and repairs queue membership for workflows and their tasks.
// It holds no state beyond its collaborators and is safe for concurrent use
// on distinct workflow ids.
type Service struct {
	store    gorkrepair.ExecutionStore
	queue    gorkrepair.QueueLayer
	registry gorkrepair.SystemTaskRegistry
	metrics  gorkrepair.Metrics
	logger   zerolog.Logger
	config   gorkrepair.ServiceConfig
}

// Option configures the repair service
type Option func(*Service)

// WithLogger sets a custom logger for the service
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the sink for repush counters
func WithMetrics(m gorkrepair.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithConfig sets a custom configuration for the service
func WithConfig(config gorkrepair.ServiceConfig) Option {
	return func(s *Service) {
		if config.DeciderQueue != "" {
			s.config = config
		}
	}
}

// NewService creates a repair service.
// If no logger is provided, a console logger at Info level is used.
// If no metrics sink is provided, repushes are not counted.
func NewService(
	store gorkrepair.ExecutionStore,
	queue gorkrepair.QueueLayer,
	registry gorkrepair.SystemTaskRegistry,
	opts ...Option,
) *Service {
	defaultLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	svc := &Service{
		store:    store,
		queue:    queue,
		registry: registry,
		metrics:  metrics.Noop{},
		logger:   defaultLogger,
		config:   gorkrepair.DefaultServiceConfig,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// VerifyAndRepairWorkflow checks the workflow against the decider queue and,
// when includeTasks is set, each of its tasks against their task queues.
// It returns true if anything was pushed.
func (s *Service) VerifyAndRepairWorkflow(ctx context.Context, workflowID string, includeTasks bool) (bool, error) {
	logger := s.invocationLogger()
	gorkrepair.LogRepairStarted(logger, workflowID, includeTasks)

	wf, err := s.loadWorkflow(ctx, logger, workflowID, includeTasks)
	if err != nil {
		return false, err
	}

	repaired, err := s.verifyAndRepairDeciderQueue(ctx, logger, wf)
	if err != nil {
		return false, err
	}

	if includeTasks {
		tasksRepaired, err := s.verifyAndRepairTasks(ctx, logger, wf)
		if err != nil {
			return false, err
		}
		repaired = repaired || tasksRepaired
	}

	gorkrepair.LogRepairCompleted(logger, workflowID, repaired)
	return repaired, nil
}

// VerifyAndRepairWorkflowTasks repairs only the tasks of the workflow.
// The decider queue is not checked.
func (s *Service) VerifyAndRepairWorkflowTasks(ctx context.Context, workflowID string) error {
	logger := s.invocationLogger()
	gorkrepair.LogRepairStarted(logger, workflowID, true)

	wf, err := s.loadWorkflow(ctx, logger, workflowID, true)
	if err != nil {
		return err
	}

	repaired, err := s.verifyAndRepairTasks(ctx, logger, wf)
	if err != nil {
		return err
	}

	gorkrepair.LogRepairCompleted(logger, workflowID, repaired)
	return nil
}

// VerifyAndRepairTask checks a single task against its task queue and pushes
// it back if it is SCHEDULED, dispatched via a queue, and missing.
func (s *Service) VerifyAndRepairTask(ctx context.Context, task *gorkrepair.Task) (bool, error) {
	return s.verifyAndRepairTask(ctx, s.invocationLogger(), task)
}

func (s *Service) invocationLogger() zerolog.Logger {
	return gorkrepair.RepairLogger(s.logger, uuid.New().String())
}

func (s *Service) loadWorkflow(ctx context.Context, logger zerolog.Logger, workflowID string, includeTasks bool) (*gorkrepair.Workflow, error) {
	if workflowID == "" {
		return nil, gorkrepair.NewRepairError(gorkrepair.ErrCodeValidation, "workflow id must not be empty", "")
	}

	wf, err := s.store.GetWorkflow(ctx, workflowID, includeTasks)
	if err != nil {
		if gorkrepair.IsNotFound(err) {
			return nil, gorkrepair.NotFoundError(workflowID, err)
		}
		gorkrepair.LogBackendError(logger, workflowID, "get_workflow", err)
		return nil, gorkrepair.BackendError(workflowID, "get_workflow", err)
	}

	return wf, nil
}

func (s *Service) verifyAndRepairDeciderQueue(ctx context.Context, logger zerolog.Logger, wf *gorkrepair.Workflow) (bool, error) {
	if wf.Status != gorkrepair.WorkflowStatusRunning {
		gorkrepair.LogDeciderSkipped(logger, wf.ID, wf.Status, skipReason(wf.Status.IsTerminal(), "not running"))
		return false, nil
	}

	queueName := s.config.DeciderQueue
	pushed, err := s.pushIfMissing(ctx, logger, wf.ID, queueName, wf.ID, gorkrepair.DeciderRepushDelaySeconds)
	if err != nil || !pushed {
		return false, err
	}

	gorkrepair.LogDeciderRepushed(logger, wf.ID, queueName, gorkrepair.DeciderRepushDelaySeconds)
	return true, nil
}

// verifyAndRepairTasks visits every task; one repair does not stop the scan.
func (s *Service) verifyAndRepairTasks(ctx context.Context, logger zerolog.Logger, wf *gorkrepair.Workflow) (bool, error) {
	repaired := false
	for _, task := range wf.Tasks {
		ok, err := s.verifyAndRepairTask(ctx, logger, task)
		if err != nil {
			return false, err
		}
		repaired = repaired || ok
	}
	return repaired, nil
}

func (s *Service) verifyAndRepairTask(ctx context.Context, logger zerolog.Logger, task *gorkrepair.Task) (bool, error) {
	if task.Status != gorkrepair.TaskStatusScheduled {
		gorkrepair.LogTaskSkipped(logger, task.ID, task.Type, skipReason(task.Status.IsTerminal(), "not scheduled"))
		return false, nil
	}

	// Unknown types are treated as queue-dispatched user tasks
	if s.registry.IsSystemTask(task.Type) {
		if sysTask, ok := s.registry.Get(task.Type); ok && !sysTask.IsAsync() {
			gorkrepair.LogTaskSkipped(logger, task.ID, task.Type, "synchronous system task")
			return false, nil
		}
	}

	pushed, err := s.pushIfMissing(ctx, logger, task.WorkflowInstanceID, task.DefinitionName, task.ID, task.CallbackAfterSeconds)
	if err != nil || !pushed {
		return false, err
	}

	gorkrepair.LogTaskRepushed(logger, task.WorkflowInstanceID, task.ID, task.DefinitionName, task.CallbackAfterSeconds)
	return true, nil
}

func skipReason(terminal bool, otherwise string) string {
	if terminal {
		return "terminal status"
	}
	return otherwise
}

// pushIfMissing pushes id onto queueName unless it is already there.
// The repush counter moves only after the push succeeded.
func (s *Service) pushIfMissing(ctx context.Context, logger zerolog.Logger, workflowID, queueName, id string, delaySeconds int64) (bool, error) {
	present, err := s.queue.Contains(ctx, queueName, id)
	if err != nil {
		gorkrepair.LogBackendError(logger, workflowID, "queue_contains", err)
		return false, gorkrepair.BackendError(workflowID, "queue_contains", err).
			WithDetails(map[string]interface{}{"operation": "queue_contains", "queue": queueName, "id": id})
	}
	if present {
		return false, nil
	}

	if err := s.queue.Push(ctx, queueName, id, delaySeconds); err != nil {
		gorkrepair.LogBackendError(logger, workflowID, "queue_push", err)
		return false, gorkrepair.BackendError(workflowID, "queue_push", err).
			WithDetails(map[string]interface{}{"operation": "queue_push", "queue": queueName, "id": id})
	}

	s.metrics.RecordRepush(ctx, queueName)
	return true, nil
}
