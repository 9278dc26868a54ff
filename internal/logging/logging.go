package logging

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"clawbridge/internal/config"
	"clawbridge/pkg/pluginapi"
)

// New builds the bridge logger. File output rotates via lumberjack; console
// output goes to stderr so stdout stays reserved for command results, and is
// colorized only on a real terminal.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL_PARSE: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}
	if cfg.Console {
		consoleConfig := encoderConfig
		if isatty.IsTerminal(os.Stderr.Fd()) {
			consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			cores = append(cores, zapcore.NewCore(
				zapcore.NewConsoleEncoder(consoleConfig),
				zapcore.AddSync(os.Stderr),
				level,
			))
		} else {
			consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(consoleConfig),
				zapcore.AddSync(os.Stderr),
				level,
			))
		}
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// PluginLogger adapts a zap logger to the contract handed to channel plugins
// and the acpx helper. A nil input stays nil, which plugins treat as quiet.
func PluginLogger(l *zap.Logger) pluginapi.Logger {
	if l == nil {
		return nil
	}
	return &pluginLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

type pluginLogger struct {
	l *zap.Logger
}

func (p *pluginLogger) Info(msg string) { p.l.Info(msg) }
func (p *pluginLogger) Warn(msg string) { p.l.Warn(msg) }
