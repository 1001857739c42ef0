// Package document holds the helpers for the JSON-like trees the pipe engine
// works on: the read-only config document and the shared, mutable state
// document.
//
// A tree is made of map[string]any (mappings), []any (sequences), strings,
// numbers, booleans and nil. Decoders in this package always produce that
// shape; Normalize brings arbitrary Go values into it.
//
// The state document is mutated only through Tree.Set (and the Handle values
// derived from it). Reads hand out deep copies, so a pipe cannot change the
// document behind the engine's back.
package document
