// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the pipeline lifecycle (load the state
// document, run its pipes in order, write the state back), decoupled from
// any specific entrypoint like a CLI.
package app
