// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a yaml file and validated using struct tags.
// Every numeric threshold of the arrival engine is a named, overridable
// field with a tuned default.
package config
