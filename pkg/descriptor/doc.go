// Package descriptor defines the serializable node descriptor and the
// structural classifier for configuration values.
//
// A descriptor specifies one UI node: a kind, attribute values, and ordered
// children. Values in attribute or child position can be further
// descriptors, sequences, structured values, or primitives; Classify sorts
// them into an explicit discriminated Class so the builder never relies on
// ad hoc type switches.
//
// Descriptor trees arrive pre-parsed (JSON, YAML, or raw maps) and are
// immutable once decoded.
package descriptor
