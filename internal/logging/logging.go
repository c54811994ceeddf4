// Package logging wraps go-kit's logfmt logger, scoping every logger to
// the component that owns it instead of sprinkling fmt.Println across
// the integrator.
package logging

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// New returns a logfmt logger over stdout, scoped with "component"=name.
func New(component string) kitlog.Logger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return kitlog.With(l, "component", component)
}

// Nop returns a logger that discards everything, for tests.
func Nop() kitlog.Logger {
	return kitlog.NewNopLogger()
}
