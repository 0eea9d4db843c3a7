// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// All goal and ledger mutations for a user are serialised through a shared
// UserLocks registry. Reads take the user's read lock so they never observe a
// half-applied mutation, and users never contend with each other.
package services
