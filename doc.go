// Package blobcipher implements an in-process AES-256-CTR block-encryption
// core for a distributed database: key derivation, a two-level key cache,
// and a header-framed encrypt/decrypt engine. It intentionally does not
// include the RPC layer that delivers base keys from an external key
// manager, on-disk page layout, or any workload-generation harness — those
// are collaborators outside this core's boundary.
package blobcipher
