// internal/workflow/inject.go
package workflow

import (
	"context"
	"fmt"

	"remoteflow/internal/common/config"
	"remoteflow/internal/common/logger"
	"remoteflow/internal/models"
)

// Node classes whose inputs accept uploaded assets. Injection for the
// binary kinds only applies to these; anything else is a no-op.
const (
	classLoadImage = "LoadImage"
	classLoadAudio = "LoadAudio"
)

// Uploader pushes binary payloads to the remote server ahead of job
// submission and returns the server-relative asset reference.
type Uploader interface {
	UploadImage(ctx context.Context, img models.Image) (string, error)
	UploadAudio(ctx context.Context, audio models.Audio) (string, error)
}

// Injector rewrites graph node inputs with caller-supplied runtime
// values. Injection never fails the invocation: upload errors and
// mismatched node classes degrade to a logged no-op.
type Injector struct {
	uploader   Uploader
	textFields []string
	log        logger.Logger
}

func NewInjector(uploader Uploader, textFields []string, log logger.Logger) *Injector {
	if len(textFields) == 0 {
		textFields = config.DefaultTextFields
	}
	return &Injector{
		uploader:   uploader,
		textFields: textFields,
		log:        log,
	}
}

// Inject applies one binding to the graph in place. The expected value
// type depends on kind: models.Image for image and video bindings,
// models.Audio for audio, anything printable for text.
func (in *Injector) Inject(ctx context.Context, g Graph, nodeID string, kind InputKind, value interface{}) {
	node, ok := g[nodeID]
	if !ok || node == nil {
		return
	}

	switch kind {
	case KindImage, KindVideo:
		in.injectImage(ctx, node, nodeID, value)
	case KindText:
		in.injectText(node, nodeID, value)
	case KindAudio:
		in.injectAudio(ctx, node, nodeID, value)
	}
}

func (in *Injector) injectImage(ctx context.Context, node *Node, nodeID string, value interface{}) {
	if node.ClassType != classLoadImage {
		return
	}
	img, ok := value.(models.Image)
	if !ok {
		in.log.Warn("image binding carries non-image value", map[string]interface{}{"nodeId": nodeID})
		return
	}

	ref, err := in.uploader.UploadImage(ctx, img)
	if err != nil {
		in.log.WithError(err).Warn("image upload failed, node left unmodified", map[string]interface{}{"nodeId": nodeID})
		return
	}
	ensureInputs(node)["image"] = ref
}

func (in *Injector) injectText(node *Node, nodeID string, value interface{}) {
	inputs := ensureInputs(node)
	text := fmt.Sprint(value)

	for _, field := range in.textFields {
		if _, ok := inputs[field]; ok {
			inputs[field] = text
			return
		}
	}

	// No candidate field declared; fall back to creating the first one.
	inputs[in.textFields[0]] = text
	in.log.Debug("text field created on node", map[string]interface{}{
		"nodeId": nodeID,
		"field":  in.textFields[0],
	})
}

func (in *Injector) injectAudio(ctx context.Context, node *Node, nodeID string, value interface{}) {
	if node.ClassType != classLoadAudio {
		return
	}
	audio, ok := value.(models.Audio)
	if !ok {
		in.log.Warn("audio binding carries non-audio value", map[string]interface{}{"nodeId": nodeID})
		return
	}

	ref, err := in.uploader.UploadAudio(ctx, audio)
	if err != nil {
		in.log.WithError(err).Warn("audio upload failed, node left unmodified", map[string]interface{}{"nodeId": nodeID})
		return
	}
	ensureInputs(node)["audio"] = ref
}

func ensureInputs(node *Node) map[string]interface{} {
	if node.Inputs == nil {
		node.Inputs = make(map[string]interface{})
	}
	return node.Inputs
}
