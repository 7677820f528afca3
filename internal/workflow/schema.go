// internal/workflow/schema.go
package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// graphSchema accepts the API workflow serialization: an object of node
// objects, each tagged with a class_type and an optional inputs map.
const graphSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"class_type": {"type": "string"},
			"inputs": {"type": "object"}
		},
		"required": ["class_type"]
	}
}`

// bindingSchema accepts the node-selection map: node id to input kind.
const bindingSchema = `{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "string",
		"enum": ["image", "text", "audio", "video"]
	}
}`

var (
	graphSchemaLoader   = gojsonschema.NewStringLoader(graphSchema)
	bindingSchemaLoader = gojsonschema.NewStringLoader(bindingSchema)
)

func validateAgainst(schema gojsonschema.JSONLoader, raw string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// InputKind tags which caller-supplied input slot feeds a graph node.
type InputKind string

const (
	KindImage InputKind = "image"
	KindText  InputKind = "text"
	KindAudio InputKind = "audio"
	KindVideo InputKind = "video"
)

// Bindings maps node id to the kind of input wired into it.
type Bindings map[string]InputKind

// SortedIDs returns the bound node ids in ascending numeric order, the
// order in which injections are applied.
func (b Bindings) SortedIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, errI := strconv.Atoi(ids[i])
		nj, errJ := strconv.Atoi(ids[j])
		if errI == nil && errJ == nil {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// ErrEmptyBindings marks a binding map with no entries.
var ErrEmptyBindings = fmt.Errorf("binding map is empty")

// ParseBindings validates and decodes a raw node-selection map.
func ParseBindings(raw string) (Bindings, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("binding map is not a JSON object: %w", err)
	}
	if len(probe) == 0 {
		return nil, ErrEmptyBindings
	}
	if err := validateAgainst(bindingSchemaLoader, raw); err != nil {
		return nil, err
	}
	var b Bindings
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, err
	}
	return b, nil
}
