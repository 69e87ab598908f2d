package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"pongmatch/internal/config"
)

// New monta um logger logrus. Com log.file configurado, as entradas vão em JSON
// para um arquivo rotacionado pelo lumberjack, além do stdout.
func New(cfg config.Log) (*logrus.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return log, nil
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return log, nil
}

// Component devolve uma entrada com o campo "component".
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

// Discard é usado em testes.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func parseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("%w: log.level: %v", config.ErrInvalid, err)
	}
	return level, nil
}
