// Package templates contains the files written by `conman init`.
package templates

import (
	_ "embed"
)

// ConfigYAML contains the embedded configuration template.
//
//go:embed config.template
var ConfigYAML []byte

// EnvFile contains the embedded environment file template.
//
//go:embed env.template
var EnvFile []byte
