// Package domain defines the core business entities for NutriSense.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NutrientVector: An open-vocabulary bundle of nutrient amounts
//   - Goal: A versioned, immutable set of daily targets
//   - FoodLogEntry: An append-only record of consumed nutrients
//   - ProgressSnapshot: A derived comparison of intake against a goal
//   - UserProfile: Personal details used for defaults such as the timezone
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
