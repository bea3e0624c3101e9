// Package cli constructs the commitmsg command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. It exposes helpers to build application instances and to
// execute the default command set.
package cli
