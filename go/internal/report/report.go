// Package report carries failures out of the save pipeline as a side
// channel. Reporting is fire-and-forget: an implementation must never
// fail in a way that breaks its caller.
package report

import "github.com/rs/zerolog/log"

// Context identifies where a reported error came from.
type Context struct {
	Operation string
	GameID    string
	Metadata  map[string]string
}

// Reporter consumes errors the save pipeline could not recover from.
type Reporter interface {
	Report(err error, ctx Context)
}

// Logger reports through the global zerolog logger.
type Logger struct{}

func (Logger) Report(err error, ctx Context) {
	ev := log.Error().Err(err).
		Str("operation", ctx.Operation).
		Str("game_id", ctx.GameID)
	for k, v := range ctx.Metadata {
		ev = ev.Str(k, v)
	}
	ev.Msg("unrecovered error")
}

// Nop discards every report.
type Nop struct{}

func (Nop) Report(error, Context) {}
