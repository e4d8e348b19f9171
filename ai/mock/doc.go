// Package mock provides test doubles for the ai package interfaces.
//
// The doubles default to deterministic behavior so tests are reproducible,
// and allow custom behavior injection via function fields.
package mock
