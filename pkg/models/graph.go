package models

import (
	"encoding/json"
	"fmt"
)

type NodeType string

const (
	TriggerNodeType   NodeType = "trigger"
	ActionNodeType    NodeType = "action"
	ConditionNodeType NodeType = "condition"
)

type ParamKind int

const (
	StringParam ParamKind = iota
	NumberParam
	BoolParam
)

// ParamValue is a node parameter restricted to a closed set of value kinds:
// string, number or boolean. Anything else in the serialized graph is a
// parse error rather than an open-ended dynamic value.
type ParamValue struct {
	Kind ParamKind
	Str  string
	Num  float64
	Bool bool
}

func StringValue(s string) ParamValue  { return ParamValue{Kind: StringParam, Str: s} }
func NumberValue(n float64) ParamValue { return ParamValue{Kind: NumberParam, Num: n} }
func BoolValue(b bool) ParamValue      { return ParamValue{Kind: BoolParam, Bool: b} }

// Value returns the underlying dynamic value, used when a parameter is
// merged into node input/output data.
func (p ParamValue) Value() interface{} {
	switch p.Kind {
	case NumberParam:
		return p.Num
	case BoolParam:
		return p.Bool
	default:
		return p.Str
	}
}

func (p ParamValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

func (p *ParamValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*p = StringValue(v)
	case float64:
		*p = NumberValue(v)
	case bool:
		*p = BoolValue(v)
	default:
		return fmt.Errorf("unsupported parameter value %s (want string, number or bool)", string(data))
	}
	return nil
}

// NodeData holds the display and configuration data for a node.
type NodeData struct {
	Label      string                `json:"label"`
	Parameters map[string]ParamValue `json:"parameters,omitempty"`
}

// Node is a single step in a workflow graph.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Data NodeData `json:"data"`
}

// Edge is a directed connection from one node's output to another node's input.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphConfig is the persisted graph format stored inside Workflow.JSONConfig.
type GraphConfig struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ParseGraphConfig deserializes a workflow's stored graph.
func ParseGraphConfig(raw string) (GraphConfig, error) {
	var g GraphConfig
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return GraphConfig{}, err
	}
	return g, nil
}

// FindNode looks up a node by id. The second return is false when the id is
// not present, which the runner treats as end-of-branch rather than an error.
func (g GraphConfig) FindNode(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// TriggerNode returns the workflow's entry point. When the graph carries more
// than one trigger node, the first in array order wins.
func (g GraphConfig) TriggerNode() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Type == TriggerNodeType {
			return n, true
		}
	}
	return Node{}, false
}

// OutgoingEdges returns the edges whose source is the given node, in the
// order they appear in the stored edge list.
func (g GraphConfig) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}
