// Package registry provides a small generic, thread-safe key/value
// registry. The declare package keeps its field-kind builders in one;
// it has no lazyrec-specific behavior of its own.
package registry
