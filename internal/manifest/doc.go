// Package manifest parses template manifests (_ptool.yaml). A manifest
// declares a template's description, default values, custom filters,
// globals, the files to generate and the commands to run afterwards.
// Manifests are validated against an embedded JSON Schema before decoding.
package manifest
