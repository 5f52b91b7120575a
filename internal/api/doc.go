// Package api defines the transport-friendly view models shared by the
// CLI tables, the unix-socket IPC surface, and the daemon HTTP API.
//
// Conversions from internal records (sessions, catalog assets, dependency
// checks) live here so every surface renders the same shapes. The package
// depends only on the domain packages it converts from; transports depend
// on it, never the other way around.
package api
