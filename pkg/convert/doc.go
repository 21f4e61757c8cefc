// Package convert defines the value-conversion contract used at the boundary
// between application domain types and the storage primitives understood by
// the larder backends, along with the null-safety wrapper, the JSON
// capability, and a set of ready-made converters.
package convert
