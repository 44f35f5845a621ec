// Package logging sets the process-wide log format once at startup. Every
// other package logs through the standard library directly, the way the
// teacher's nosana/client.go and nosana/provider.go do - with bracketed
// level prefixes rather than a structured logging framework.
package logging

import (
	"log"
)

// Init configures the standard logger with a timestamp prefix and no
// file/line noise, matching the terse banner-and-[LEVEL] style the rest of
// the node uses.
func Init() {
	log.SetFlags(log.Ldate | log.Ltime)
}
