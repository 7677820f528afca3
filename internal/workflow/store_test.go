// internal/workflow/store_test.go
package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remoteflow/internal/common/logger"
)

const sampleGraph = `{
	"3": {"class_type": "KSampler", "inputs": {"seed": 42, "model": ["4", 0]}},
	"4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "sd15.safetensors"}},
	"9": {"class_type": "SaveImage", "inputs": {"images": ["3", 0]}}
}`

func TestStore_Load(t *testing.T) {
	s := NewStore(logger.NewTestLogger(t))

	g, err := s.Load(sampleGraph)
	require.NoError(t, err)
	require.Len(t, g, 3)
	assert.Equal(t, "KSampler", g["3"].ClassType)
	assert.Equal(t, []interface{}{"4", float64(0)}, g["3"].Inputs["model"])
}

func TestStore_LoadRejectsInvalid(t *testing.T) {
	s := NewStore(logger.NewTestLogger(t))

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{nope"},
		{name: "node without class_type", raw: `{"3": {"inputs": {}}}`},
		{name: "node is not an object", raw: `{"3": "KSampler"}`},
		{name: "top level is an array", raw: `[{"class_type": "KSampler"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Load(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestStore_CopyOnRead(t *testing.T) {
	s := NewStore(logger.NewTestLogger(t))

	first, err := s.Load(sampleGraph)
	require.NoError(t, err)

	// Mutate the first copy the way the injector would.
	first["3"].Inputs["seed"] = float64(7)
	first["4"].Inputs["image"] = "uploaded.png"

	second, err := s.Load(sampleGraph)
	require.NoError(t, err)

	assert.Equal(t, float64(42), second["3"].Inputs["seed"], "prior mutation must not leak through the cache")
	assert.NotContains(t, second["4"].Inputs, "image")
}

func TestStore_IdenticalTextYieldsEqualGraphs(t *testing.T) {
	s := NewStore(logger.NewTestLogger(t))

	a, err := s.Load(sampleGraph)
	require.NoError(t, err)
	b, err := s.Load(sampleGraph)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGraph_Submittable(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want bool
	}{
		{name: "numeric keys", g: Graph{"3": {ClassType: "KSampler"}}, want: true},
		{name: "ui-format key", g: Graph{"node_a": {ClassType: "KSampler"}}, want: false},
		{name: "mixed keys", g: Graph{"3": {}, "out": {}}, want: false},
		{name: "empty graph", g: Graph{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Submittable())
		})
	}
}

func TestGraph_Nodes(t *testing.T) {
	g := Graph{
		"10": {ClassType: "SaveImage"},
		"2":  {ClassType: "KSampler"},
		"9":  {ClassType: "CLIPTextEncode"},
	}
	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"2", "9", "10"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID})
}

func TestParseBindings(t *testing.T) {
	b, err := ParseBindings(`{"12": "text", "3": "image"}`)
	require.NoError(t, err)
	assert.Equal(t, KindImage, b["3"])
	assert.Equal(t, []string{"3", "12"}, b.SortedIDs())

	_, err = ParseBindings(`{]`)
	assert.Error(t, err)

	_, err = ParseBindings(`{}`)
	assert.ErrorIs(t, err, ErrEmptyBindings)

	_, err = ParseBindings(`{"3": "hologram"}`)
	assert.Error(t, err)
}
