// Package notifications delivers run results via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. The
// workflow depends only on the Service interface, so alternative transports
// can be added without touching callers.
package notifications
