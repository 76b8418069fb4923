// Package interop converts tag trees to and from JSON, YAML, CBOR and plain
// Go values.
//
// The mappings are lossy in one direction: each text format has fewer
// numeric types than the tag format, so integers come back as Int when they
// fit in 32 bits and Long otherwise, and floating point values come back as
// Double. Byte arrays travel as "b64:"-prefixed base64 strings in JSON,
// !!binary scalars in YAML and byte strings in CBOR. Compound key order is
// kept by JSON and YAML.
package interop
