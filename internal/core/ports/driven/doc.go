// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - GoalStore: Append-only goal persistence keyed by user
//   - FoodLogStore: Append-only intake ledger keyed by user
//   - ProfileStore: User profile persistence
//   - Clock: Time source for timestamps and "today"
//
// # Optional Interfaces
//
//   - ConfigStore: Persisted application configuration. Only the CLI needs it.
//
// Stores return domain.ErrNotFound for missing records. Any other error is
// treated by services as an infrastructure failure.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
