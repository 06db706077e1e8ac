// Package logging builds the slog loggers used across wxunpack.
//
// It offers a human-oriented console handler and a machine-oriented JSON
// handler, selected through configuration or TTY detection, plus small attr
// helpers so call sites stay terse. Construct loggers through New or
// NewFromConfig; tests use NewNop.
package logging
