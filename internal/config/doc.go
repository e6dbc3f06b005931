// ABOUTME: Configuration loading for relay-gateway and relay-responder.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.
package config
