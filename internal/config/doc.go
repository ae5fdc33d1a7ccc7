// Package config loads the weft-chatd YAML configuration.
//
// Files support ${VAR} environment variable expansion before parsing,
// and human-readable duration strings ("25ms", "1s") for timing fields.
// Validation runs at load time so a bad file fails fast at startup.
package config
