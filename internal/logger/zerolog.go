package logger

import (
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ZerologAdapter implements Logger on top of a zerolog.Logger. Every event
// carries a "component" field; extra fields are written in key order so
// repeated runs produce identical lines.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog writes JSON lines to writer.
func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	return &ZerologAdapter{
		logger: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
	}
}

// NewConsoleLogger writes human-readable output to stderr so stdout stays
// free for command results.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	send(z.logger.Debug(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	send(z.logger.Info(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	send(z.logger.Warn(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	send(z.logger.Error().Err(err), component, fields).Msg("operation failed")
}

// send decorates a possibly disabled event; zerolog ignores calls on nil events.
func send(event *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if event == nil {
		return nil
	}
	event = event.Str("component", component)

	keys := lo.Keys(fields)
	slices.Sort(keys)
	for _, k := range keys {
		event = event.Interface(k, fields[k])
	}
	return event
}
