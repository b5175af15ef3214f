// Command workflow-repair verifies the workflows named on the command line
// against the queue layer once and re-pushes whatever is missing.
//
//	workflow-repair -config repair.yaml [-tasks-only] [-include-tasks=false] <workflowId>...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sicko7947/gorkrepair"
	"github.com/sicko7947/gorkrepair/metrics"
	"github.com/sicko7947/gorkrepair/queue"
	"github.com/sicko7947/gorkrepair/repair"
	"github.com/sicko7947/gorkrepair/store"
	"github.com/sicko7947/gorkrepair/systask"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (defaults apply when empty)")
	includeTasks := flag.Bool("include-tasks", true, "also verify each task against its task queue")
	tasksOnly := flag.Bool("tasks-only", false, "verify tasks only, skip the decider queue check")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the run")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	workflowIDs := flag.Args()
	if len(workflowIDs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: workflow-repair [flags] <workflowId>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := gorkrepair.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = gorkrepair.LoadConfig(*configFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}

	level, err := cfg.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log level")
	}
	log.Logger = log.Logger.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	svc, closeFn, err := initializeService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize repair service")
	}
	defer closeFn()

	tally := &runTally{tasksOnly: *tasksOnly}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, id := range workflowIDs {
		g.Go(func() error {
			repaired, err := runOne(gctx, svc, id, *includeTasks, *tasksOnly)
			tally.record(repaired, err)
			if err != nil {
				log.Error().Err(err).Str("workflow_id", id).Msg("Repair failed")
			}
			// Other workflows still run
			return nil
		})
	}
	_ = g.Wait()

	tally.log(log.Logger, len(workflowIDs))

	if tally.failed.Load() > 0 {
		closeFn()
		os.Exit(1)
	}
}

// runTally counts outcomes across a run. The tasks-only operation does not
// report whether it pushed anything, so no repaired count is kept for it.
type runTally struct {
	tasksOnly bool
	repaired  atomic.Int64
	failed    atomic.Int64
}

func (t *runTally) record(repaired bool, err error) {
	switch {
	case err != nil:
		t.failed.Add(1)
	case repaired:
		t.repaired.Add(1)
	}
}

func (t *runTally) log(logger zerolog.Logger, workflows int) {
	evt := logger.Info().
		Int("workflows", workflows).
		Int64("failed", t.failed.Load())
	if t.tasksOnly {
		evt = evt.Str("mode", "tasks_only")
	} else {
		evt = evt.Int64("repaired", t.repaired.Load())
	}
	evt.Msg("Repair run finished")
}

func runOne(ctx context.Context, svc *repair.Service, workflowID string, includeTasks, tasksOnly bool) (bool, error) {
	if tasksOnly {
		return false, svc.VerifyAndRepairWorkflowTasks(ctx, workflowID)
	}
	return svc.VerifyAndRepairWorkflow(ctx, workflowID, includeTasks)
}

// initializeService wires DynamoDB, Redis, the system task registry and metrics.
// The returned close function flushes metrics and closes Redis.
func initializeService(ctx context.Context, cfg gorkrepair.Config) (*repair.Service, func(), error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoDB.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	ddb := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	registry := systask.Builtin()
	registry.Apply(cfg.SystemTasks)

	provider, err := metrics.NewProvider(cfg.Metrics.Exporter, log.Logger)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	svc := repair.NewService(
		store.NewDynamoDBStore(ddb, cfg.DynamoDB.Table),
		queue.NewRedisQueue(rdb, queue.WithKeyPrefix(cfg.Redis.KeyPrefix)),
		registry,
		repair.WithLogger(log.Logger),
		repair.WithMetrics(provider.Sink()),
		repair.WithConfig(cfg.ServiceConfig()),
	)

	log.Info().
		Str("table", cfg.DynamoDB.Table).
		Str("redis", cfg.Redis.Addr).
		Str("decider_queue", cfg.DeciderQueue).
		Str("metrics_exporter", cfg.Metrics.Exporter).
		Strs("system_tasks", registry.Names()).
		Msg("Repair service initialized")

	var closed atomic.Bool
	closeFn := func() {
		if !closed.CompareAndSwap(false, true) {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush metrics")
		}
		_ = rdb.Close()
	}
	return svc, closeFn, nil
}
