// Package types provides the shared type contracts of apibridge: the error
// taxonomy, the protocol-facing tool descriptor with its JSON-schema-shaped
// input contract, and the tagged invocation result. It is the lowest-level
// package and depends on nothing internal.
package types
