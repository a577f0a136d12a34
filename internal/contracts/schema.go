package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// nullableProps names the wire fields whose optionality is expressed as
// anyOf [type, null]. Everything else must carry a concrete value.
var nullableProps = map[string]bool{
	"context":    true,
	"maxResults": true,
	"maxFiles":   true,
	"extensions": true,
	"dir":        true,
	"maxEntries": true,
}

// Contract pairs a schema name with its JSON Schema document, ready to be
// attached to a model request as a strict structured-output format.
type Contract struct {
	Name   string
	Schema json.RawMessage
}

// ToolRequestContract returns the closed schema for the per-round
// tool-request bundle.
func ToolRequestContract() (Contract, error) {
	return build("tool_request", &ToolRequestWire{})
}

// ChangelogContract returns the closed schema for the final changelog model.
func ChangelogContract() (Contract, error) {
	return build("changelog_model", &ChangelogWire{})
}

// ReleaseNotesContract returns the closed schema for release-notes output.
func ReleaseNotesContract() (Contract, error) {
	return build("release_notes", &ReleaseNotesWire{})
}

// VersionBumpContract returns the closed schema for version-bump output.
func VersionBumpContract() (Contract, error) {
	return build("version_bump", &VersionBumpWire{})
}

func build(name string, v any) (Contract, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	s := r.Reflect(v)
	s.Version = "" // strict structured-output endpoints reject $schema
	closeSchema(s)

	raw, err := json.Marshal(s)
	if err != nil {
		return Contract{}, fmt.Errorf("marshaling %s schema: %w", name, err)
	}
	return Contract{Name: name, Schema: raw}, nil
}

// closeSchema walks the schema tree, closing every object (no additional
// properties, every declared field required) and wrapping nullable fields
// in anyOf [type, null].
func closeSchema(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		s.AdditionalProperties = jsonschema.FalseSchema
		s.Required = s.Required[:0]
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			s.Required = append(s.Required, pair.Key)
			closeSchema(pair.Value)
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if nullableProps[pair.Key] {
				s.Properties.Set(pair.Key, nullable(pair.Value))
			}
		}
	}
	closeSchema(s.Items)
	for _, sub := range s.AnyOf {
		closeSchema(sub)
	}
	for _, sub := range s.OneOf {
		closeSchema(sub)
	}
}

func nullable(s *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{s, {Type: "null"}},
	}
}
