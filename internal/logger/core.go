package logger

import (
	"go.uber.org/zap/zapcore"
)

// logContext is the subset of zap fields copied onto persisted records.
type logContext struct {
	ip       string
	letterID string
	actorID  string
	err      string
}

func (lc logContext) with(fields []zapcore.Field) logContext {
	for _, f := range fields {
		switch f.Key {
		case "ip":
			lc.ip = f.String
		case "letter_id":
			lc.letterID = f.String
		case "actor_id", "user_id":
			lc.actorID = f.String
		case "error":
			if e, ok := f.Interface.(error); ok && e != nil {
				lc.err = e.Error()
			}
		}
	}
	return lc
}

// DBCore wraps a core and forwards entries at or above minLevel to the writer.
type DBCore struct {
	zapcore.Core
	writer   *DBLogWriter
	minLevel zapcore.Level
	fields   logContext
}

func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter, minLevel zapcore.Level) zapcore.Core {
	return &DBCore{
		Core:     baseCore,
		writer:   writer,
		minLevel: minLevel,
	}
}

// With keeps the DB tee and the context fields on child loggers.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	return &DBCore{
		Core:     c.Core.With(fields),
		writer:   c.writer,
		minLevel: c.minLevel,
		fields:   c.fields.with(fields),
	}
}

func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= c.minLevel {
		c.writer.Add(entry, c.fields.with(fields))
	}
	return c.Core.Write(entry, fields)
}

func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
