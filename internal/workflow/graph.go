// internal/workflow/graph.go
package workflow

import (
	"sort"
	"strconv"
)

// Node is one step of a workflow graph.
//
// Inputs values can be scalars (string, float64, bool) or a two-element
// []interface{} referencing another node's output slot.
type Node struct {
	ClassType string                 `json:"class_type"`
	Inputs    map[string]interface{} `json:"inputs,omitempty"`
}

// Graph maps node id to node spec. Node ids in the submittable API
// serialization are decimal-digit strings.
type Graph map[string]*Node

// Clone returns an independently mutable deep copy of the graph.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for id, node := range g {
		if node == nil {
			out[id] = nil
			continue
		}
		cp := &Node{ClassType: node.ClassType}
		if node.Inputs != nil {
			cp.Inputs = make(map[string]interface{}, len(node.Inputs))
			for k, v := range node.Inputs {
				cp.Inputs[k] = cloneValue(v)
			}
		}
		out[id] = cp
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		cp := make([]interface{}, len(t))
		for i, e := range t {
			cp[i] = cloneValue(e)
		}
		return cp
	case map[string]interface{}:
		cp := make(map[string]interface{}, len(t))
		for k, e := range t {
			cp[k] = cloneValue(e)
		}
		return cp
	default:
		return v
	}
}

// Submittable reports whether the graph is in the API serialization:
// every node id is a decimal-digit string. UI-authoring exports carry
// non-numeric keys and cannot be queued.
func (g Graph) Submittable() bool {
	if len(g) == 0 {
		return false
	}
	for id := range g {
		if !isDigits(id) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NodeInfo is a read-only summary of one graph node.
type NodeInfo struct {
	ID        string
	ClassType string
	Inputs    map[string]interface{}
}

// Nodes lists the graph's nodes ordered by ascending numeric id, with
// non-numeric ids sorted last.
func (g Graph) Nodes() []NodeInfo {
	out := make([]NodeInfo, 0, len(g))
	for id, node := range g {
		if node == nil {
			continue
		}
		out = append(out, NodeInfo{ID: id, ClassType: node.ClassType, Inputs: node.Inputs})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessNodeID(out[i].ID, out[j].ID)
	})
	return out
}

func lessNodeID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
