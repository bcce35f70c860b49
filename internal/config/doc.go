// Package config holds the acctexport configuration: defaults, the
// optional .acctexport YAML file, XDG directories and validation.
package config
