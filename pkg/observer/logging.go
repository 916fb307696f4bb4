package observer

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// LogObserver renders the evaluation hooks as structured log events:
// expansion and invocation at debug level, completion at info with the
// produced value, failure at error with the cause. Elapsed times are
// attached to the terminal events.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver returns a LogObserver writing through log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// WillEvaluate logs the upcoming expansion at debug level.
func (o *LogObserver) WillEvaluate(id task.ID) {
	o.log.Debug().Stringer("task", id).Msg("will evaluate")
}

// Starting logs the process-fn invocation at debug level.
func (o *LogObserver) Starting(id task.ID) {
	o.log.Debug().Stringer("task", id).Msg("starting process fn")
}

// Completed logs the produced value and elapsed time at info level.
func (o *LogObserver) Completed(id task.ID, v any, elapsed time.Duration) {
	o.log.Info().
		Stringer("task", id).
		Interface("value", v).
		Dur("elapsed", elapsed).
		Msg("task completed")
}

// Failed logs the failure and elapsed time at error level.
func (o *LogObserver) Failed(id task.ID, err error, elapsed time.Duration) {
	o.log.Error().
		Stringer("task", id).
		Err(err).
		Dur("elapsed", elapsed).
		Msg("task failed")
}

// NewLogger builds a zerolog.Logger from cfg: output target (stderr,
// stdout, or a file path opened for append), console or JSON format, and
// minimum level.
func NewLogger(cfg LoggingConfig) (zerolog.Logger, error) {
	var writer io.Writer
	switch cfg.Output {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), err
		}
		writer = file
	}

	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	log := zerolog.New(writer).With().Timestamp().Logger()
	return log.Level(parseLogLevel(cfg.Level)), nil
}

// parseLogLevel converts a string log level to zerolog.Level, defaulting
// to info.
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
