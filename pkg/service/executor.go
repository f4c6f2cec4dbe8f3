package service

import (
	"context"
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NodeData is the payload flowing along a chain of nodes. Each node's output
// extends its predecessor's input by shallow merge: new keys win, old keys
// persist unless overwritten.
type NodeData map[string]interface{}

func (d NodeData) clone() NodeData {
	out := make(NodeData, len(d)+4)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Executor produces the output data for one node given its type and
// accumulated input.
type Executor interface {
	Execute(ctx context.Context, node models.Node, input NodeData) (NodeData, error)
}

// NodeExecutor is the default Executor. Integrations are simulated: no node
// calls an external service.
type NodeExecutor struct{}

func NewNodeExecutor() *NodeExecutor {
	return &NodeExecutor{}
}

func (e *NodeExecutor) Execute(ctx context.Context, node models.Node, input NodeData) (NodeData, error) {
	switch node.Type {
	case models.TriggerNodeType:
		return e.executeTrigger(node), nil
	case models.ActionNodeType:
		return e.executeAction(node, input), nil
	case models.ConditionNodeType:
		return e.executeCondition(node, input), nil
	default:
		return nil, errors.Wrapf(ErrUnknownNodeType, "%q", node.Type)
	}
}

// executeTrigger ignores the node's declared parameters and returns a fixed
// synthetic payload standing in for a real external trigger event.
func (e *NodeExecutor) executeTrigger(node models.Node) NodeData {
	return NodeData{
		"trigger":     node.Data.Label,
		"event_id":    uuid.NewString(),
		"source":      "form_submission",
		"received_at": time.Now().Format(time.RFC3339),
		"form": map[string]interface{}{
			"name":    "Jane Doe",
			"email":   "jane@example.com",
			"message": "I would like a demo",
		},
	}
}

// executeAction marks which action ran and merges its declared parameters
// into the data flowing downstream.
func (e *NodeExecutor) executeAction(node models.Node, input NodeData) NodeData {
	out := input.clone()
	out["last_action"] = node.Data.Label
	out["action:"+node.ID] = true
	for k, v := range node.Data.Parameters {
		out[k] = v.Value()
	}
	return out
}

// executeCondition records that the condition was met. No boolean expression
// is evaluated: conditions always pass, and the runner follows every outgoing
// edge regardless.
func (e *NodeExecutor) executeCondition(node models.Node, input NodeData) NodeData {
	out := input.clone()
	out["condition_met"] = true
	out["last_condition"] = node.Data.Label
	for k, v := range node.Data.Parameters {
		out[k] = v.Value()
	}
	return out
}
