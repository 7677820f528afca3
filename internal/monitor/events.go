// internal/monitor/events.go
package monitor

import "encoding/json"

// eventFrame is the JSON envelope delivered on the push channel.
type eventFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	eventExecuting      = "executing"
	eventExecuted       = "executed"
	eventExecutionError = "execution_error"
)

// executingData announces the node currently running. A null node
// signals that the whole graph finished.
type executingData struct {
	Node *string `json:"node"`
}

// executedData delivers one node's output record. Arrival order is not
// guaranteed to match execution order.
type executedData struct {
	Node   string          `json:"node"`
	Output json.RawMessage `json:"output"`
}

// executionErrorData describes a server-side failure.
type executionErrorData struct {
	NodeID           string `json:"node_id"`
	NodeType         string `json:"node_type"`
	ExceptionType    string `json:"exception_type"`
	ExceptionMessage string `json:"exception_message"`
}

func (d executionErrorData) reason() string {
	switch {
	case d.ExceptionMessage != "" && d.NodeType != "":
		return d.NodeType + ": " + d.ExceptionMessage
	case d.ExceptionMessage != "":
		return d.ExceptionMessage
	case d.NodeType != "":
		return d.NodeType + " failed"
	default:
		return "execution error"
	}
}
