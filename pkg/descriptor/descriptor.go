package descriptor

import (
	"reflect"
)

// Class is the structural classification of a configuration value.
type Class uint8

const (
	ClassNil        Class = iota // nil / absent
	ClassPrimitive               // string, bool, number
	ClassSequence                // ordered sequence of values
	ClassStructured              // structured value without a kind field
	ClassDescriptor              // renderable node descriptor
	ClassOpaque                  // value with no configuration meaning (func, channel)
)

// String returns the string representation of the Class.
func (c Class) String() string {
	switch c {
	case ClassNil:
		return "Nil"
	case ClassPrimitive:
		return "Primitive"
	case ClassSequence:
		return "Sequence"
	case ClassStructured:
		return "Structured"
	case ClassDescriptor:
		return "Descriptor"
	case ClassOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Descriptor is the serializable specification of one UI node.
// Descriptors are immutable once decoded: the builder reads them but never
// mutates them, so one descriptor tree can back many rebuild passes.
type Descriptor struct {
	// Kind identifies which renderable primitive to instantiate.
	Kind string `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Attributes maps attribute names to values. Values may themselves be
	// nested descriptors (as raw maps), sequences, bindings, or primitives.
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty" mapstructure:"attributes"`

	// Children is the ordered sequence of child descriptors or primitives.
	Children []any `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`

	// Key optionally overrides the positional path segment for this node,
	// keeping its identity stable when siblings are reordered.
	Key string `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
}

// Classify determines the structural class of an arbitrary configuration
// value. Classification is purely structural: a map carrying a non-empty
// "kind" string is a descriptor no matter where it appears.
func Classify(value any) Class {
	switch v := value.(type) {
	case nil:
		return ClassNil
	case *Descriptor:
		if v == nil {
			return ClassNil
		}
		return ClassDescriptor
	case Descriptor:
		return ClassDescriptor
	case map[string]any:
		if isDescriptorMap(v) {
			return ClassDescriptor
		}
		return ClassStructured
	case []any:
		return ClassSequence
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return ClassPrimitive
	}

	// Uncommon shapes (typed slices, typed maps, structs) fall back to
	// reflection. Shapes that cannot carry configuration at all are opaque.
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return ClassSequence
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ClassNil
		}
		return ClassStructured
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ClassOpaque
	default:
		return ClassStructured
	}
}

// isDescriptorMap reports whether a raw map has the descriptor shape:
// a non-empty string under "kind", with optional attributes/children.
func isDescriptorMap(m map[string]any) bool {
	kind, ok := m["kind"].(string)
	return ok && kind != ""
}

// AsDescriptor converts value to a *Descriptor if it classifies as one.
// Raw maps are decoded; existing descriptors pass through.
func AsDescriptor(value any) (*Descriptor, bool) {
	switch v := value.(type) {
	case *Descriptor:
		if v == nil {
			return nil, false
		}
		return v, true
	case Descriptor:
		return &v, true
	case map[string]any:
		if !isDescriptorMap(v) {
			return nil, false
		}
		d, err := FromMap(v)
		if err != nil {
			return nil, false
		}
		return d, true
	default:
		return nil, false
	}
}
