// Package config loads and validates ClassKit configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// CLASSKIT_* environment variable overrides. Validation runs after all
// layers are applied, so a deployment can ship a minimal file and inject
// secrets through the environment.
package config
