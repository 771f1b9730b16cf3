package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Format is "console" or "json".
	Format string
	// File, when set, receives a JSON copy of every event with rotation.
	File string
	// Output overrides stderr for the primary stream.
	Output io.Writer
}

// New builds a logger whose every stream passes through FilteringWriter.
// The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var primary io.Writer
	switch opts.Format {
	case "", "console":
		primary = zerolog.ConsoleWriter{Out: NewFilteringWriter(out), NoColor: true, TimeFormat: time.Kitchen}
	case "json":
		primary = NewFilteringWriter(out)
	default:
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	writer := primary
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		closer = file
		writer = zerolog.MultiLevelWriter(primary, NewFilteringWriter(file))
	}

	logger := zerolog.New(writer).
		Level(level).
		Hook(SensitiveDataHook{}).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
