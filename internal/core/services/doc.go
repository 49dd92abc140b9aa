// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The storage service is the module's total boundary: nothing below a
// public operation is allowed to raise, and every infrastructure
// fault is converted to the operation's "not successful" outcome.
package services
