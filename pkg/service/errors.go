package service

import "github.com/pkg/errors"

// Run error taxonomy. ErrWorkflowNotActive is surfaced before any run record
// exists; the others are recorded on the run before propagating to the caller.
var (
	// ErrWorkflowNotActive means the workflow is missing or not in "active" status.
	ErrWorkflowNotActive = errors.New("workflow is not active")

	// ErrMalformedConfig means the stored graph JSON could not be parsed or
	// contains no trigger node.
	ErrMalformedConfig = errors.New("malformed workflow configuration")

	// ErrUnknownNodeType means the graph contains a node type the executor
	// has no behavior for.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrRunTimeout means the run's context deadline expired mid-walk.
	ErrRunTimeout = errors.New("run deadline exceeded")
)
