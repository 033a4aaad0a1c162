// Package config loads the YAML files that declare contexts, requests and
// tests, and locates the cache directory that holds saved responses.
//
// A config path may name a single file or a directory. Every *.yaml and
// *.yml file in a directory is read in lexical order and merged, with later
// files replacing earlier definitions of the same name.
package config
