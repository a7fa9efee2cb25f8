// Package config loads tally's TOML configuration.
//
// The file lives at ~/.config/tally/config.toml unless a path is given.
// A missing file is not an error; every key is optional and blank values
// keep their defaults. Durations are Go duration strings.
//
//	backend = "sim"             # sim, http, mysql or google
//	status_timeout = "3s"
//	serialize_per_task = true
//	refresh_interval = "0s"     # reload from the backend in the background
//	log_file = "~/.local/state/tally/tally.log"
//
//	[sim]
//	failure_rate = 0.1
//	list_delay = "500ms"
//	delay = "1s"
//	seed_demo = false
//
//	[http]
//	base_url = "127.0.0.1:7490"  # used by backend = "http"
//	listen = "127.0.0.1:7490"    # used by tally serve
//
//	[mysql]
//	dsn = "user:pass@tcp(127.0.0.1:3306)/tally"
//
//	[google]
//	config_dir = "~/.config/gtask"  # holds oauth_client.json and token.json
//	list_id = "@default"
//
// Paths starting with ~ are expanded to the home directory. Load returns an
// error for unreadable files, invalid TOML ("parse config: ..."), malformed
// durations and unknown backends.
package config
