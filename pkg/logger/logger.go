package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// NewLogger writes to the console and, when filePath is set, to a rotating file.
func NewLogger(filePath, serviceName string) (zerolog.Logger, error) {
	return newLogger(os.Stdout, filePath, serviceName)
}

// NewQuietLogger writes only to the rotating file, keeping the terminal free
// for interactive output.
func NewQuietLogger(filePath, serviceName string) (zerolog.Logger, error) {
	return newLogger(nil, filePath, serviceName)
}

func newLogger(console io.Writer, filePath, serviceName string) (zerolog.Logger, error) {
	var writers []io.Writer
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		})
	}

	if filePath != "" {
		fileRotator := &lumberjack.Logger{
			Filename:   filePath, // log file location
			MaxSize:    maxSize,  // megabytes before rotation
			MaxBackups: maxBack,  // number of old files to retain
			MaxAge:     maxAge,   // days to retain rotated files
			Compress:   true,     // gzip old log files
		}
		writers = append(writers, fileRotator)
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multiWriter).With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger().
		Level(zerolog.DebugLevel)

	logger.Info().
		Str("logsFilePath", filePath).
		Str("serviceName", serviceName).
		Msg("Logger initialized with file rotation")

	return logger, nil
}
