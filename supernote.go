// Package supernote reads the proprietary container files produced by
// Supernote note-taking devices.
//
// A container file is a chain of length-prefixed blocks holding textual
// key/value parameters, located through addresses the file stores about
// itself: a header block after the signature, a footer block pointed to
// by the file's last four bytes and one block per page (X-series files
// add one block per drawing layer). ParseMetadata walks that chain into
// a Metadata tree; LoadNotebook additionally extracts the raw bitmap
// payload of every page. Decoding the bitmap bytes into an image is
// left to downstream consumers.
package supernote

import (
	"strings"

	"github.com/stanislawkuich/supernote-tool/internal/logging"
)

func SetLogLevel(level string) {
	var lvl logging.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = logging.LevelDebug
	case "info":
		lvl = logging.LevelInfo
	case "warning":
		lvl = logging.LevelWarning
	case "error":
		lvl = logging.LevelError
	default:
		lvl = logging.LevelNone
	}
	logging.SetLevel(lvl)
}
