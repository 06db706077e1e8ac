// Package history persists a ledger of completed unpack runs.
//
// Each run records the discovery root, the resolved main package, and the
// archives decoded, so past invocations can be reviewed with
// "wxunpack history". Recording is best effort: a ledger failure never
// fails the unpack itself.
package history
