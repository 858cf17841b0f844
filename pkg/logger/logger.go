package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InfoLogger пишет всё; до Init это no-op, чтобы тесты и утилиты не падали.
var InfoLogger, FatalLogger = zap.NewNop(), zap.NewNop()

const timeLayout = "2006-01-02 15:04:05"

type Config struct {
	Path    string
	MaxSize int64 // bytes
	Backups int
	Level   zapcore.Level
}

// EncoderConfig renders "[ts] [LEVEL] [instrument] message".
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:    "ts",
		LevelKey:   "level",
		NameKey:    "instrument",
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.UTC().Format(timeLayout) + "]")
		},
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
		EncodeName: func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + name + "]")
		},
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// Init tees stdout and a rotating log file, installs the global loggers and
// returns a closer for the file.
func Init(cfg Config) (func() error, error) {
	file, err := OpenRotatingFile(cfg.Path, cfg.MaxSize, cfg.Backups)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}

	enc := zapcore.NewConsoleEncoder(EncoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), cfg.Level),
		zapcore.NewCore(enc, file, cfg.Level),
	)

	InfoLogger = zap.New(core)
	FatalLogger = InfoLogger
	zap.ReplaceGlobals(InfoLogger)

	return func() error {
		_ = InfoLogger.Sync()
		return file.Close()
	}, nil
}

func Info(format string, args ...interface{}) {
	InfoLogger.Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	InfoLogger.Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	InfoLogger.Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	FatalLogger.Fatal(fmt.Sprintf(format, args...))
}

// Instrument: логгер с префиксом инструмента.
type Instrument struct {
	l *zap.Logger
}

func Symbol(symbol string) Instrument {
	return Instrument{l: InfoLogger.Named(symbol)}
}

func (i Instrument) Info(format string, args ...interface{}) {
	i.l.Info(fmt.Sprintf(format, args...))
}

func (i Instrument) Warn(format string, args ...interface{}) {
	i.l.Warn(fmt.Sprintf(format, args...))
}

func (i Instrument) Error(format string, args ...interface{}) {
	i.l.Error(fmt.Sprintf(format, args...))
}
