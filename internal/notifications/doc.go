// Package notifications delivers engine events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when notifications
// are disabled. Publish and error events can be toggled independently so
// a user can keep failure alerts while muting routine publishes.
//
// Extend this package if you need alternative transports; the composer
// and publish orchestrator depend only on the Service interface.
package notifications
