package descriptor

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/frond-ui/frond/internal/errors"
)

// FromMap decodes a raw configuration map into a Descriptor.
// Nested descriptors inside attributes and children stay as raw maps; they
// are classified lazily during the build, so the decoded tree remains a
// plain serializable structure.
func FromMap(m map[string]any) (*Descriptor, error) {
	var d Descriptor
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &d,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, errors.New("E020").Wrap(err)
	}
	if err := decoder.Decode(m); err != nil {
		return nil, errors.New("E020").Wrap(err).
			WithSuggestion("Check that kind is a string and children is a sequence")
	}
	if d.Kind == "" {
		return nil, errors.New("E001").
			WithDetail("Configuration root has no kind field")
	}
	return &d, nil
}

// FromJSON decodes a JSON document into a Descriptor.
func FromJSON(data []byte) (*Descriptor, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New("E020").Wrap(err)
	}
	return FromMap(m)
}

// FromYAML decodes a YAML document into a Descriptor.
func FromYAML(data []byte) (*Descriptor, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New("E020").Wrap(err)
	}
	return FromMap(normalizeYAML(m).(map[string]any))
}

// normalizeYAML rewrites yaml.v3 decoded values so nested maps are always
// map[string]any, matching what the classifier expects.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return value
	}
}
