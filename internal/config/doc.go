// Package config handles loading curator's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/curator/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing, empty or out of range, use defaults
//  5. CURATOR_TOKEN, when set, replaces the token
//
// # TOML Format
//
//	api_url = "https://catalog.example.com"
//	token = "..."
//	page_size = 20
//	max_page_size = 100
//	reload_seconds = 30          # 0 disables background reloads
//	search_fields = ["title", "description", "tags"]
//	slug_cache_size = 512
//	slug_cache_ttl_seconds = 600 # 0 keeps entries until evicted
//	log_file = "~/.local/share/curator/curator.log"
//
// Every field is optional. Tilde expansion is performed for log_file.
// page_size is clamped to max_page_size.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
