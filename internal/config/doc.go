// Package config loads, parses, and validates application settings from an
// optional YAML file and VOLUNTEER_-prefixed environment variables.
package config
