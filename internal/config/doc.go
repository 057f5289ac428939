// Package config loads the render farm client settings from TOML.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/rayvision/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. Environment variables override whatever the file set
//
// # TOML Format
//
//	access_id = "..."
//	access_key = "..."
//	domain = "task.renderbus.com"
//	protocol = "https"
//	platform = "2"
//	api_version = "1"
//	timeout_seconds = 30
//	retry_attempts = 5
//
// Only the credentials are required, and they may come from
// RAYVISION_API_ACCESS_ID and RAYVISION_API_KEY instead. RAYVISION_DOMAIN and
// RAYVISION_PLATFORM override the session target. A retry_attempts of zero
// disables request retries.
//
// Missing config files are NOT an error. Call Validate before building a
// client; it reports missing credentials.
package config
