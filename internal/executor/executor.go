// internal/executor/executor.go
package executor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"remoteflow/internal/common/config"
	apperrors "remoteflow/internal/common/errors"
	"remoteflow/internal/common/logger"
	"remoteflow/internal/common/metrics"
	"remoteflow/internal/common/netutil"
	"remoteflow/internal/media"
	"remoteflow/internal/models"
	"remoteflow/internal/monitor"
	"remoteflow/internal/resolve"
	"remoteflow/internal/transport"
	"remoteflow/internal/workflow"
)

// Inputs carries the caller-supplied runtime values, positional per
// kind: the Nth binding of a kind consumes the Nth slot of that kind.
type Inputs struct {
	Images []models.Image
	Texts  []string
	Audios []models.Audio
	Videos []models.Image
}

func (in Inputs) at(kind workflow.InputKind, idx int) (interface{}, bool) {
	switch kind {
	case workflow.KindImage:
		if idx < len(in.Images) {
			return in.Images[idx], true
		}
	case workflow.KindText:
		if idx < len(in.Texts) {
			return in.Texts[idx], true
		}
	case workflow.KindAudio:
		if idx < len(in.Audios) {
			return in.Audios[idx], true
		}
	case workflow.KindVideo:
		if idx < len(in.Videos) {
			return in.Videos[idx], true
		}
	}
	return nil, false
}

// Request describes one remote invocation.
type Request struct {
	WorkflowJSON string
	BindingsJSON string
	Inputs       Inputs
}

// Executor sequences a full invocation: probe, load, inject, submit,
// await, resolve. It never returns an error; every failure degrades to
// a complete placeholder result whose text names the failed stage.
type Executor struct {
	cfg      *config.Config
	store    *workflow.Store
	client   *transport.Client
	injector *workflow.Injector
	monitor  *monitor.Monitor
	resolver *resolve.Resolver
	log      logger.Logger
	tracer   trace.Tracer
}

func New(cfg *config.Config, log logger.Logger) *Executor {
	// One client id for the whole executor: the server correlates push
	// events to the id used at submission.
	clientID := uuid.NewString()

	client := transport.NewClient(cfg.Server.Address, clientID, cfg.Timeouts, log)
	demuxer := media.NewDemuxer(cfg.Media.FFmpegPath, cfg.Timeouts.Transcode, log)

	return &Executor{
		cfg:      cfg,
		store:    workflow.NewStore(log),
		client:   client,
		injector: workflow.NewInjector(client, cfg.Inject.TextFields, log),
		monitor:  monitor.New(cfg.Server.Address, clientID, cfg.Timeouts.Job, log),
		resolver: resolve.New(client, demuxer, log),
		log: log.WithFields(map[string]interface{}{
			"server": netutil.MaskAddress(cfg.Server.Address, cfg.Server.HideIP),
		}),
		tracer: otel.Tracer("remoteflow/executor"),
	}
}

// Execute runs one invocation end to end.
func (e *Executor) Execute(ctx context.Context, req Request) models.ResolvedResult {
	ctx, span := e.tracer.Start(ctx, "execute")
	defer span.End()

	probeCtx, probeSpan := e.tracer.Start(ctx, "probe")
	reachable := e.client.Probe(probeCtx)
	probeSpan.End()
	if !reachable {
		return e.degrade(apperrors.NewUnreachableError(e.cfg.Server.Address))
	}

	g, err := e.store.Load(req.WorkflowJSON)
	if err != nil {
		return e.degrade(apperrors.NewWorkflowParseError(err.Error()))
	}
	if !g.Submittable() {
		return e.degrade(apperrors.NewAPIFormatError())
	}
	if nodes := g.Nodes(); len(nodes) > 0 {
		classes := make([]string, len(nodes))
		for i, n := range nodes {
			classes[i] = n.ID + ":" + n.ClassType
		}
		e.log.Debug("workflow loaded", map[string]interface{}{
			"nodes":   len(nodes),
			"classes": strings.Join(classes, ","),
		})
	}

	bindings, err := workflow.ParseBindings(req.BindingsJSON)
	if err != nil {
		if errors.Is(err, workflow.ErrEmptyBindings) {
			return e.degrade(apperrors.NewEmptyBindingError())
		}
		return e.degrade(apperrors.NewBindingParseError(err.Error()))
	}

	injectCtx, injectSpan := e.tracer.Start(ctx, "inject")
	counters := make(map[workflow.InputKind]int)
	for _, id := range bindings.SortedIDs() {
		kind := bindings[id]
		idx := counters[kind]
		counters[kind]++

		value, ok := req.Inputs.at(kind, idx)
		if !ok {
			continue
		}
		e.injector.Inject(injectCtx, g, id, kind, value)
	}
	injectSpan.End()

	submitCtx, submitSpan := e.tracer.Start(ctx, "submit")
	promptID, err := e.client.SubmitJob(submitCtx, g)
	submitSpan.End()
	if err != nil {
		return e.degrade(apperrors.NewSubmissionError(err))
	}

	e.log.Info("job submitted", map[string]interface{}{"promptId": promptID})

	awaitCtx, awaitSpan := e.tracer.Start(ctx, "await")
	jobStart := time.Now()
	outcome := e.monitor.Await(awaitCtx, promptID)
	metrics.JobDuration.Observe(time.Since(jobStart).Seconds())
	awaitSpan.End()

	switch outcome.State {
	case monitor.StateFailed:
		return e.degrade(apperrors.NewExecutionFailureError(outcome.Reason))
	case monitor.StateTimedOut:
		return e.degrade(apperrors.NewTimeoutError(e.cfg.Timeouts.Job))
	case monitor.StateCanceled:
		return e.degrade(apperrors.NewCanceledError(outcome.Reason))
	}

	resolveCtx, resolveSpan := e.tracer.Start(ctx, "resolve")
	result := e.resolver.Resolve(resolveCtx, g, outcome.Outputs)
	resolveSpan.End()

	metrics.JobOutcomes.WithLabelValues("succeeded").Inc()
	e.log.Info("invocation complete", map[string]interface{}{
		"promptId": promptID,
		"nodes":    len(outcome.Outputs),
	})
	return result
}

func (e *Executor) degrade(stageErr *apperrors.StageError) models.ResolvedResult {
	metrics.JobOutcomes.WithLabelValues(strings.ToLower(string(stageErr.Stage))).Inc()
	e.log.Warn("invocation degraded", map[string]interface{}{
		"stage":   string(stageErr.Stage),
		"details": stageErr.Details,
	})
	return models.PlaceholderResult(stageErr.Message)
}
