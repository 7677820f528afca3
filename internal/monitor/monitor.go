// internal/monitor/monitor.go
package monitor

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"remoteflow/internal/common/logger"
)

// State is the terminal state of a monitored job.
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateTimedOut
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// Outcome is the one-shot result of a completion wait. Outputs holds
// the accumulated per-node output records; it is only meaningful when
// State is StateSucceeded.
type Outcome struct {
	State   State
	Outputs map[string]json.RawMessage
	Reason  string
}

// Monitor tracks asynchronous job completion over the server's push
// channel. The client id must match the one used at submission so the
// server routes this job's events here.
type Monitor struct {
	address    string
	clientID   string
	jobTimeout time.Duration
	dialer     *websocket.Dialer
	log        logger.Logger
}

func New(address, clientID string, jobTimeout time.Duration, log logger.Logger) *Monitor {
	return &Monitor{
		address:    address,
		clientID:   clientID,
		jobTimeout: jobTimeout,
		dialer:     websocket.DefaultDialer,
		log:        log,
	}
}

// session accumulates event state for one job. The terminal transition
// is one-shot: the first writer wins and closes done; later terminal
// events are ignored.
type session struct {
	mu      sync.Mutex
	state   State
	reason  string
	outputs map[string]json.RawMessage
	done    chan struct{}
}

func newSession() *session {
	return &session{
		state:   StatePending,
		outputs: make(map[string]json.RawMessage),
		done:    make(chan struct{}),
	}
}

func (s *session) terminal(state State, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePending {
		return
	}
	s.state = state
	s.reason = reason
	close(s.done)
}

func (s *session) record(node string, output json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[node] = output
}

func (s *session) snapshot() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	outputs := make(map[string]json.RawMessage, len(s.outputs))
	for k, v := range s.outputs {
		outputs[k] = v
	}
	return Outcome{State: s.state, Outputs: outputs, Reason: s.reason}
}

// Await blocks until the job reaches a terminal state or the overall
// timeout elapses. The push connection is closed unconditionally when
// the wait ends; events delivered after that point are discarded.
func (m *Monitor) Await(ctx context.Context, promptID string) Outcome {
	wsURL := url.URL{
		Scheme:   "ws",
		Host:     m.address,
		Path:     "/ws",
		RawQuery: "clientId=" + url.QueryEscape(m.clientID),
	}

	conn, _, err := m.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		m.log.WithError(err).Warn("push channel dial failed", map[string]interface{}{"promptId": promptID})
		return Outcome{State: StateFailed, Reason: "push channel unavailable"}
	}

	sess := newSession()
	go m.readPump(conn, sess, promptID)

	timer := time.NewTimer(m.jobTimeout)
	defer timer.Stop()

	select {
	case <-sess.done:
	case <-timer.C:
		sess.terminal(StateTimedOut, "no terminal event within deadline")
	case <-ctx.Done():
		sess.terminal(StateCanceled, ctx.Err().Error())
	}

	conn.Close()
	return sess.snapshot()
}

func (m *Monitor) readPump(conn *websocket.Conn, sess *session, promptID string) {
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			// Binary frames carry preview data; not our concern.
			continue
		}

		var frame eventFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			m.log.WithError(err).Debug("discarding malformed event frame", map[string]interface{}{"promptId": promptID})
			continue
		}

		switch frame.Type {
		case eventExecuting:
			var data executingData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				continue
			}
			if data.Node == nil {
				sess.terminal(StateSucceeded, "")
			}

		case eventExecuted:
			var data executedData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				continue
			}
			sess.record(data.Node, data.Output)

		case eventExecutionError:
			var data executionErrorData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				sess.terminal(StateFailed, "execution error")
				continue
			}
			sess.terminal(StateFailed, data.reason())
		}
	}
}
