// Package resources embeds the built-in pattern rules.
//
// Layout follows pkg/lint/pattern: patterns/<group>/<name>.star holds the
// script and motives/<group>/<name>.md its motive.
package resources

import (
	"embed"
	"io/fs"
)

//go:embed patterns motives
var embedded embed.FS

// FS returns the built-in pattern tree.
func FS() fs.FS {
	return embedded
}
