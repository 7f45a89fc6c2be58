// Package config loads the gateway configuration from environment
// variables.
package config
