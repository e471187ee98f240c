package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (*commonCore)(nil)

type commonCore struct {
	lvlEnabler zapcore.LevelEnabler
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
	ws         zapcore.WriteSyncer
	enc        func(cfg zapcore.EncoderConfig) zapcore.Encoder
	core       zapcore.Core
}

func (cc *commonCore) timeEncoder() zapcore.TimeEncoder                            { return cc.tsEnc }
func (cc *commonCore) levelEncoder() zapcore.LevelEncoder                          { return cc.lvlEnc }
func (cc *commonCore) writeSyncer() zapcore.WriteSyncer                            { return cc.ws }
func (cc *commonCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return cc.enc }
func (cc *commonCore) Enabled(lvl zapcore.Level) bool {
	return cc.lvlEnabler.Enabled(lvl)
}

func (cc *commonCore) With(fields []zap.Field) zapcore.Core {
	return cc.core.With(fields)
}

func (cc *commonCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return cc.core.Check(ent, ce)
}

func (cc *commonCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	return cc.core.Write(ent, fields)
}

func (cc *commonCore) Sync() error {
	return cc.core.Sync()
}

// WrapCore rebuilds the core with another encoder config, keeping
// the writer, encoders and level enabler of the origin.
func WrapCore(core xLogCore, cfg zapcore.EncoderConfig) xLogCore {
	cfg.EncodeLevel = core.levelEncoder()
	cfg.EncodeTime = core.timeEncoder()

	cc := &commonCore{
		ws:         core.writeSyncer(),
		enc:        core.outEncoder(),
		lvlEnabler: core,
		lvlEnc:     core.levelEncoder(),
		tsEnc:      core.timeEncoder(),
	}
	cc.core = zapcore.NewCore(cc.enc(cfg), cc.ws, cc.lvlEnabler)
	return cc
}

var componentCoreEncoderCfg = zapcore.EncoderConfig{
	MessageKey:    "msg",
	LevelKey:      "lvl",
	TimeKey:       "ts",
	CallerKey:     coreKeyIgnored,
	EncodeCaller:  zapcore.ShortCallerEncoder,
	FunctionKey:   coreKeyIgnored,
	NameKey:       "component",
	EncodeName:    zapcore.FullNameEncoder,
	StacktraceKey: coreKeyIgnored,
}

// newComponentLogger derives a named logger for third-party
// components (fx, ants) without caller and function keys.
func newComponentLogger(logger XLogger, name string) *xLogger {
	l := &xLogger{}
	if xl, ok := logger.(*xLogger); ok {
		l.ctxFields = xl.ctxFields
		l.dynamicLevelEnabler = xl.dynamicLevelEnabler
	}
	l.logger.Store(logger.
		zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			if core == nil {
				panic("[XLogger] core is nil")
			}
			switch cc := core.(type) {
			case xLogMultiCore:
				return WrapCores(cc, componentCoreEncoderCfg)
			case xLogCore:
				return WrapCore(cc, componentCoreEncoderCfg)
			default:
			}
			panic("[XLogger] core is not xLogCore")
		})),
	)
	return l
}
