// Package types defines the Store and Shelf interfaces, the schema and
// column types, codec erasure for converters, and standard errors for the
// Larder storage system.
package types
