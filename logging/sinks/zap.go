package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"horde-hunt/server/logging"
)

// Zap forwards events to a zap logger as structured entries.
type Zap struct {
	logger *zap.Logger
}

// NewZap builds a production logger, or a colourised development logger.
func NewZap(cfg logging.ZapConfig) (*Zap, error) {
	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableStacktrace = true
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.DisableCaller = true
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Zap{logger: logger}, nil
}

// NewZapWithLogger wraps an existing logger.
func NewZapWithLogger(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

func (s *Zap) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.Time("time", event.Time),
		zap.String("category", event.Category),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if event.Room != "" {
		fields = append(fields, zap.String("room", event.Room))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, t := range event.Targets {
			targets = append(targets, formatEntity(t))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	if ce := s.logger.Check(zapLevel(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Close flushes buffered entries. Sync errors on terminals are ignored by
// callers that log to stderr.
func (s *Zap) Close(context.Context) error {
	return s.logger.Sync()
}

func zapLevel(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
