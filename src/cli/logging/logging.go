// Package logging contains the singleton logger that we use globally.
// It has little else since everything that logs depends on it.
package logging

import (
	"gopkg.in/op/go-logging.v1"
)

// Log is the logger shared by every package in rcore.
var Log = logging.MustGetLogger("rcore")
