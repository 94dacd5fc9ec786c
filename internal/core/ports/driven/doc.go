// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - Fetcher: yields raw event records from one configured source
//   - FeedStore: reads and writes the published feed document
//   - RunStore: persists run history
//   - SettingsStore: user-local key/value settings
//   - Publisher: pushes the feed artifact to its hosting location
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or source package
package driven
