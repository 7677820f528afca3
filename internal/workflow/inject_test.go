// internal/workflow/inject_test.go
package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remoteflow/internal/common/logger"
	"remoteflow/internal/models"
)

// fakeUploader records upload calls and returns a scripted reference.
type fakeUploader struct {
	ref        string
	err        error
	imageCalls int
	audioCalls int
}

func (f *fakeUploader) UploadImage(_ context.Context, _ models.Image) (string, error) {
	f.imageCalls++
	return f.ref, f.err
}

func (f *fakeUploader) UploadAudio(_ context.Context, _ models.Audio) (string, error) {
	f.audioCalls++
	return f.ref, f.err
}

func testGraph() Graph {
	return Graph{
		"1": {ClassType: "LoadImage", Inputs: map[string]interface{}{"image": "old.png"}},
		"2": {ClassType: "CLIPTextEncode", Inputs: map[string]interface{}{"text": "a cat"}},
		"3": {ClassType: "LoadAudio", Inputs: map[string]interface{}{"audio": "old.wav"}},
		"4": {ClassType: "KSampler", Inputs: map[string]interface{}{"seed": float64(1)}},
	}
}

func newTestInjector(t *testing.T, up *fakeUploader) *Injector {
	t.Helper()
	return NewInjector(up, nil, logger.NewTestLogger(t))
}

func TestInject_Image(t *testing.T) {
	up := &fakeUploader{ref: "sub/input.png"}
	in := newTestInjector(t, up)
	g := testGraph()

	in.Inject(context.Background(), g, "1", KindImage, models.NewImage(2, 2))

	assert.Equal(t, 1, up.imageCalls)
	assert.Equal(t, "sub/input.png", g["1"].Inputs["image"])
}

func TestInject_ImageOnWrongClassIsNoOp(t *testing.T) {
	up := &fakeUploader{ref: "input.png"}
	in := newTestInjector(t, up)
	g := testGraph()

	in.Inject(context.Background(), g, "4", KindImage, models.NewImage(2, 2))

	assert.Zero(t, up.imageCalls)
	assert.Equal(t, map[string]interface{}{"seed": float64(1)}, g["4"].Inputs)
}

func TestInject_ImageUploadFailureLeavesNodeUnmodified(t *testing.T) {
	up := &fakeUploader{err: fmt.Errorf("boom")}
	in := newTestInjector(t, up)
	g := testGraph()

	in.Inject(context.Background(), g, "1", KindImage, models.NewImage(2, 2))

	assert.Equal(t, "old.png", g["1"].Inputs["image"])
}

func TestInject_VideoUsesImagePath(t *testing.T) {
	up := &fakeUploader{ref: "clip.png"}
	in := newTestInjector(t, up)
	g := testGraph()

	in.Inject(context.Background(), g, "1", KindVideo, models.NewImage(2, 2))

	assert.Equal(t, 1, up.imageCalls)
	assert.Equal(t, "clip.png", g["1"].Inputs["image"])
}

func TestInject_TextFieldPriority(t *testing.T) {
	tests := []struct {
		name      string
		inputs    map[string]interface{}
		wantField string
	}{
		{
			name:      "prompt wins over text",
			inputs:    map[string]interface{}{"prompt": "", "text": ""},
			wantField: "prompt",
		},
		{
			name:      "text when no prompt",
			inputs:    map[string]interface{}{"text": "", "value": ""},
			wantField: "text",
		},
		{
			name:      "string before value",
			inputs:    map[string]interface{}{"string": "", "value": ""},
			wantField: "string",
		},
		{
			name:      "prompt created when nothing matches",
			inputs:    map[string]interface{}{"seed": float64(3)},
			wantField: "prompt",
		},
		{
			name:      "prompt created on node with nil inputs",
			inputs:    nil,
			wantField: "prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInjector(t, &fakeUploader{})
			g := Graph{"7": {ClassType: "CLIPTextEncode", Inputs: tt.inputs}}

			in.Inject(context.Background(), g, "7", KindText, "hello")

			require.NotNil(t, g["7"].Inputs)
			assert.Equal(t, "hello", g["7"].Inputs[tt.wantField])
		})
	}
}

func TestInject_TextStringifiesValue(t *testing.T) {
	in := newTestInjector(t, &fakeUploader{})
	g := Graph{"7": {ClassType: "CLIPTextEncode", Inputs: map[string]interface{}{"text": ""}}}

	in.Inject(context.Background(), g, "7", KindText, 42)

	assert.Equal(t, "42", g["7"].Inputs["text"])
}

func TestInject_ConfigurableTextFields(t *testing.T) {
	in := NewInjector(&fakeUploader{}, []string{"caption"}, logger.NewTestLogger(t))
	g := Graph{"7": {ClassType: "CaptionNode", Inputs: map[string]interface{}{"caption": "old"}}}

	in.Inject(context.Background(), g, "7", KindText, "new")

	assert.Equal(t, "new", g["7"].Inputs["caption"])
}

func TestInject_Audio(t *testing.T) {
	up := &fakeUploader{ref: "audio_ab12cd34.wav"}
	in := newTestInjector(t, up)
	g := testGraph()

	audio := models.Audio{Waveform: models.NewWaveform(2, 64), SampleRate: 44100}
	in.Inject(context.Background(), g, "3", KindAudio, audio)

	assert.Equal(t, 1, up.audioCalls)
	assert.Equal(t, "audio_ab12cd34.wav", g["3"].Inputs["audio"])
}

func TestInject_AudioOnWrongClassIsNoOp(t *testing.T) {
	up := &fakeUploader{ref: "a.wav"}
	in := newTestInjector(t, up)
	g := testGraph()

	audio := models.Audio{Waveform: models.NewWaveform(2, 64), SampleRate: 44100}
	in.Inject(context.Background(), g, "2", KindAudio, audio)

	assert.Zero(t, up.audioCalls)
}

func TestInject_OnlyTargetNodeTouched(t *testing.T) {
	up := &fakeUploader{ref: "new.png"}
	in := newTestInjector(t, up)
	g := testGraph()
	before := g.Clone()

	in.Inject(context.Background(), g, "1", KindImage, models.NewImage(2, 2))

	for id := range g {
		if id == "1" {
			continue
		}
		assert.Equal(t, before[id], g[id], "node %s must be untouched", id)
	}
}

func TestInject_UnknownNodeIsNoOp(t *testing.T) {
	up := &fakeUploader{ref: "new.png"}
	in := newTestInjector(t, up)
	g := testGraph()
	before := g.Clone()

	in.Inject(context.Background(), g, "99", KindImage, models.NewImage(2, 2))

	assert.Equal(t, before, g)
	assert.Zero(t, up.imageCalls)
}
