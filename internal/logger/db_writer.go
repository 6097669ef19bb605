package logger

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/config"
	"go-elms/internal/database"

	"go.uber.org/zap/zapcore"
)

const logsCollection = "logs"

// LogSink persists a single log record.
type LogSink interface {
	InsertLog(ctx context.Context, record common_models.Log) error
}

type mongoSink struct {
	db *database.MongodbDB
}

func (s *mongoSink) InsertLog(ctx context.Context, record common_models.Log) error {
	ctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()
	_, err := s.db.DB.Collection(logsCollection).InsertOne(ctx, record)
	return database.Classify("insert log", err)
}

// DBLogWriter ships log records to a sink from a single background goroutine.
type DBLogWriter struct {
	sink    LogSink
	records chan common_models.Log
	appId   string
	dropped atomic.Int64
	done    chan struct{}
	once    sync.Once
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	return newDBLogWriter(&mongoSink{db: mongodb}, cfg.AppId, 1000)
}

func newDBLogWriter(sink LogSink, appId string, buffer int) *DBLogWriter {
	w := &DBLogWriter{
		sink:    sink,
		records: make(chan common_models.Log, buffer),
		appId:   appId,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Add never blocks; records are counted and dropped when the buffer is full.
func (w *DBLogWriter) Add(entry zapcore.Entry, ctxFields logContext) {
	record := common_models.Log{
		Message:      entry.Message,
		Level:        entry.Level.String(),
		LogLevelId:   levelID(entry.Level),
		Caller:       entry.Caller.Function,
		IpAddress:    ctxFields.ip,
		LetterID:     ctxFields.letterID,
		ActorID:      ctxFields.actorID,
		Error:        ctxFields.err,
		AppId:        w.appId,
		CreatedOnUtc: entry.Time.UTC(),
	}
	if record.CreatedOnUtc.IsZero() {
		record.CreatedOnUtc = time.Now().UTC()
	}

	select {
	case w.records <- record:
	default:
		w.dropped.Add(1)
	}
}

// Dropped reports how many records were discarded because the buffer was full.
func (w *DBLogWriter) Dropped() int64 {
	return w.dropped.Load()
}

// Close stops accepting records and waits until the buffered ones are written
// or ctx ends.
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.once.Do(func() { close(w.records) })
	select {
	case <-w.done:
		if n := w.Dropped(); n > 0 {
			// the logger itself is going away, stderr is all that is left
			_, _ = os.Stderr.WriteString("db log writer dropped records\n")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) run() {
	defer close(w.done)
	for record := range w.records {
		// a failing sink must never take the service down with it
		_ = w.sink.InsertLog(context.Background(), record)
	}
}

func levelID(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
