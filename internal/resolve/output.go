// internal/resolve/output.go
package resolve

import (
	"encoding/json"
	"fmt"

	"remoteflow/internal/models"
)

// ArtifactKind discriminates what a node's output record can yield.
// One record may carry several kinds at once.
type ArtifactKind int

const (
	KindImage ArtifactKind = iota
	KindText
	KindVideo
	KindAudio
)

func (k ArtifactKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// NodeOutput is one node's decoded output record. Classification is
// done once at decode time by field presence: `images` marks an image
// producer, `text`/`string` a text producer, `gifs` a video-container
// producer, `audio`/`audios` an audio producer.
type NodeOutput struct {
	Images  []models.AssetRef
	Gifs    []models.AssetRef
	Text    []string
	Strings []string
	Audio   []models.AssetRef
	Audios  []models.AssetRef

	kinds    map[ArtifactKind]bool
	hasAudio bool // singular `audio` key present; wins over `audios`
	empty    bool
}

// DecodeNodeOutput parses a raw output record. Field values are decoded
// tolerantly: scalar values where lists are expected become one-element
// lists, and malformed entries are dropped rather than failing the
// record.
func DecodeNodeOutput(raw json.RawMessage) (*NodeOutput, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	out := &NodeOutput{
		kinds: make(map[ArtifactKind]bool),
		empty: len(fields) == 0,
	}

	if v, ok := fields["images"]; ok {
		out.Images = decodeAssets(v)
		out.kinds[KindImage] = true
	}
	if v, ok := fields["gifs"]; ok {
		out.Gifs = decodeAssets(v)
		out.kinds[KindVideo] = true
	}
	if v, ok := fields["text"]; ok {
		out.Text = decodeStrings(v)
		out.kinds[KindText] = true
	}
	if v, ok := fields["string"]; ok {
		out.Strings = decodeStrings(v)
		out.kinds[KindText] = true
	}
	if v, ok := fields["audio"]; ok {
		out.Audio = decodeAssets(v)
		out.kinds[KindAudio] = true
		out.hasAudio = true
	}
	if v, ok := fields["audios"]; ok {
		out.Audios = decodeAssets(v)
		out.kinds[KindAudio] = true
	}

	return out, nil
}

// Empty reports a record with no fields at all; such nodes join no
// bucket.
func (o *NodeOutput) Empty() bool {
	return o.empty
}

// Has reports whether the record was classified under the given kind.
func (o *NodeOutput) Has(kind ArtifactKind) bool {
	return o.kinds[kind]
}

// Kinds lists the record's classifications in a fixed order.
func (o *NodeOutput) Kinds() []ArtifactKind {
	var out []ArtifactKind
	for _, k := range []ArtifactKind{KindImage, KindText, KindVideo, KindAudio} {
		if o.kinds[k] {
			out = append(out, k)
		}
	}
	return out
}

// audioEntries returns the record's audio references. The singular
// `audio` field takes precedence over `audios` when both are present.
func (o *NodeOutput) audioEntries() []models.AssetRef {
	if o.hasAudio {
		return o.Audio
	}
	return o.Audios
}

func decodeAssets(raw json.RawMessage) []models.AssetRef {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		// Single object form.
		list = []json.RawMessage{raw}
	}

	out := make([]models.AssetRef, 0, len(list))
	for _, item := range list {
		var ref models.AssetRef
		if err := json.Unmarshal(item, &ref); err != nil || ref.Filename == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func decodeStrings(raw json.RawMessage) []string {
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		var single interface{}
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		list = []interface{}{single}
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}
