package xlog

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (xLogMultiCore)(nil)

// xLogMultiCore fans out every entry to all the cores.
// It has no encoders and writer of its own.
type xLogMultiCore []xLogCore

func (mc xLogMultiCore) levelEncoder() zapcore.LevelEncoder                          { return nil }
func (mc xLogMultiCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return nil }
func (mc xLogMultiCore) timeEncoder() zapcore.TimeEncoder                            { return nil }
func (mc xLogMultiCore) writeSyncer() zapcore.WriteSyncer                            { return nil }

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	clone := make([]zapcore.Core, len(mc))
	for i := range mc {
		clone[i] = mc[i].With(fields)
	}
	return zapcore.NewTee(clone...)
}

func (mc xLogMultiCore) Level() zapcore.Level {
	minLvl := zapcore.InvalidLevel
	for i := range mc {
		if lvl := zapcore.LevelOf(mc[i]); lvl < minLvl {
			minLvl = lvl
		}
	}
	return minLvl
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	for i := range mc {
		if mc[i].Enabled(lvl) {
			return true
		}
	}
	return false
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for i := range mc {
		ce = mc[i].Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var err error
	for i := range mc {
		err = multierr.Append(err, mc[i].Write(ent, fields))
	}
	return err
}

func (mc xLogMultiCore) Sync() error {
	var err error
	for i := range mc {
		err = multierr.Append(err, mc[i].Sync())
	}
	return err
}

// XLogTeeCore drops the nil cores.
func XLogTeeCore(cores ...xLogCore) xLogCore {
	mc := make(xLogMultiCore, 0, len(cores))
	for _, core := range cores {
		if core != nil {
			mc = append(mc, core)
		}
	}
	return mc
}

func WrapCores(cores []xLogCore, cfg zapcore.EncoderConfig) xLogCore {
	newCores := make(xLogMultiCore, 0, len(cores))
	for i := range cores {
		newCores = append(newCores, WrapCore(cores[i], cfg))
	}
	return newCores
}
