package service

import (
	"context"
	"fmt"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/pkg/errors"
)

// Logger defines the logging interface for the service layer.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// RunResult is the handle returned to the caller that started a run.
type RunResult struct {
	Success bool  `json:"success"`
	RunID   int64 `json:"run_id"`
}

// WorkflowRunner executes a workflow's node graph: it locates the trigger
// node and walks the directed chain of connected nodes depth-first, merging
// each node's output into the next node's input, recording a run row and an
// ordered log trace, and feeding the notification threshold rules with the
// outcome.
//
// A single run is strictly sequential: sibling branches from a fan-out node
// execute one after another, and no two writes from the same run are ever in
// flight simultaneously. Concurrent runs of the same workflow are permitted
// and may interleave at the store level.
type WorkflowRunner struct {
	store    storage.Store
	logger   Logger
	recorder *RunRecorder
	executor Executor
	alerts   *AlertService
}

// RunnerOption configures a WorkflowRunner.
type RunnerOption func(*WorkflowRunner)

// WithExecutor replaces the default node executor.
func WithExecutor(e Executor) RunnerOption {
	return func(r *WorkflowRunner) {
		r.executor = e
	}
}

func NewWorkflowRunner(store storage.Store, logger Logger, opts ...RunnerOption) *WorkflowRunner {
	r := &WorkflowRunner{
		store:    store,
		logger:   logger,
		recorder: NewRunRecorder(store, logger),
		executor: NewNodeExecutor(),
		alerts:   NewAlertService(store, logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartRun executes the workflow identified by workflowID on behalf of
// userID. The workflow must exist and be active; otherwise no run record is
// created. On a satisfied precondition a run row is created in "running"
// state and is guaranteed a single terminal transition to "success" or
// "failed" before StartRun returns.
func (r *WorkflowRunner) StartRun(ctx context.Context, workflowID int64, userID string) (RunResult, error) {
	wf, err := r.store.GetWorkflow(workflowID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return RunResult{}, errors.Wrapf(ErrWorkflowNotActive, "workflow %d not found", workflowID)
		}
		return RunResult{}, errors.Wrapf(err, "load workflow %d", workflowID)
	}
	if !wf.Runnable() {
		return RunResult{}, errors.Wrapf(ErrWorkflowNotActive, "workflow %d has status %q", workflowID, wf.Status)
	}

	runID, err := r.recorder.CreateRun(wf)
	if err != nil {
		return RunResult{}, err
	}
	r.logger.Infof("Started run %d for workflow %d (user %s)", runID, workflowID, userID)

	graph, err := models.ParseGraphConfig(wf.JSONConfig)
	if err != nil {
		wrapped := errors.Wrapf(ErrMalformedConfig, "parse graph: %v", err)
		return RunResult{RunID: runID}, r.failRun(runID, wrapped)
	}
	trigger, ok := graph.TriggerNode()
	if !ok {
		wrapped := errors.Wrap(ErrMalformedConfig, "no trigger node")
		return RunResult{RunID: runID}, r.failRun(runID, wrapped)
	}

	visited := make(map[string]struct{}, len(graph.Nodes))
	if err := r.walk(ctx, runID, graph, trigger.ID, nil, visited); err != nil {
		return RunResult{RunID: runID}, r.failRun(runID, err)
	}

	run, err := r.recorder.FinishRun(runID, models.SuccessRunStatus, "")
	if err != nil {
		return RunResult{RunID: runID}, err
	}
	r.alerts.RunCompleted(run)
	r.logger.Infof("Run %d for workflow %d succeeded in %.2fs", runID, workflowID, run.Duration)
	return RunResult{Success: true, RunID: runID}, nil
}

// walk executes the chain rooted at nodeID depth-first. The visited set is
// shared across the entire traversal, so a node reachable through two fan-in
// paths executes only once, on whichever path reaches it first. Each branch
// ends when it hits an id with no matching node or runs out of outgoing
// edges. The first node error aborts the whole walk: branches queued after
// the failing one never execute.
func (r *WorkflowRunner) walk(ctx context.Context, runID int64, graph models.GraphConfig, nodeID string, input NodeData, visited map[string]struct{}) error {
	node, ok := graph.FindNode(nodeID)
	if !ok {
		// Dangling edge target: end of this branch, not an error.
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(ErrRunTimeout, "%v", err)
	}
	if _, seen := visited[node.ID]; seen {
		return nil
	}
	visited[node.ID] = struct{}{}

	label := node.Data.Label
	if label == "" {
		label = node.ID
	}
	if err := r.recorder.AddLog(runID, fmt.Sprintf("Executing %s", label)); err != nil {
		return err
	}
	output, err := r.executor.Execute(ctx, node, input)
	if err != nil {
		if logErr := r.recorder.AddLog(runID, fmt.Sprintf("❌ %s failed: %v", label, err)); logErr != nil {
			r.logger.Errorf("Failed to record failure of node %s: %v", node.ID, logErr)
		}
		return err
	}
	if err := r.recorder.AddLog(runID, fmt.Sprintf("✅ %s completed", label)); err != nil {
		return err
	}

	for _, edge := range graph.OutgoingEdges(node.ID) {
		if err := r.walk(ctx, runID, graph, edge.Target, output, visited); err != nil {
			return err
		}
	}
	return nil
}

// failRun is the single terminal call site for failed runs: it finalizes the
// run row, feeds the threshold rules, and hands the original error back to
// the caller.
func (r *WorkflowRunner) failRun(runID int64, cause error) error {
	run, err := r.recorder.FinishRun(runID, models.FailedRunStatus, cause.Error())
	if err != nil {
		r.logger.Errorf("Failed to finalize run %d: %v (original error: %v)", runID, err, cause)
		return cause
	}
	r.alerts.RunCompleted(run)
	return cause
}
