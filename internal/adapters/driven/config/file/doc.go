// Package file provides the TOML-based configuration adapter.
//
// Configuration is resolved exactly once at load time: explicit file
// values win over process environment, environment wins over
// defaults. The result is an immutable Config value; operation logic
// never performs ambient lookups.
package file
