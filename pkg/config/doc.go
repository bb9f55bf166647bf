// Package config loads branchtint configuration.
//
// Configuration is layered with koanf: embedded defaults, then the user
// config file, then the workspace config file, then BRANCHTINT_*
// environment variables. Later layers replace earlier ones key by key;
// lists are replaced, not appended.
//
// The rules and target_keys entries are read leniently: entries of the
// wrong type are dropped instead of failing the load, because both are
// re-read on every reconciliation pass and a half-edited file must not stop
// the overlay.
package config
