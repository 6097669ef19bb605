package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "go-elms/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memorySink struct {
	mu      sync.Mutex
	records []common_models.Log
	block   chan struct{}
}

func (s *memorySink) InsertLog(_ context.Context, record common_models.Log) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *memorySink) snapshot() []common_models.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]common_models.Log(nil), s.records...)
}

func TestDBCoreTeesEntries(t *testing.T) {
	sink := &memorySink{}
	writer := newDBLogWriter(sink, "go-elms-test", 10)
	base, logs := observer.New(zapcore.DebugLevel)

	log := zap.New(NewDBCore(base, writer, zapcore.InfoLevel), zap.AddCaller()).
		With(zap.String("letter_id", "id-1"))
	log.Info("Letter signed", zap.String("ip", "10.0.0.1"), zap.String("actor_id", "u-signee"))
	log.Debug("below the persisted level")
	log.Warn("Delivery failed", zap.Error(errors.New("mailbox unavailable")))

	assert.Equal(t, 3, logs.Len())
	require.NoError(t, writer.Close(context.Background()))

	records := sink.snapshot()
	require.Len(t, records, 2)
	assert.Equal(t, "Letter signed", records[0].Message)
	assert.Equal(t, "info", records[0].Level)
	assert.Equal(t, 20, records[0].LogLevelId)
	assert.Equal(t, "10.0.0.1", records[0].IpAddress)
	assert.Equal(t, "id-1", records[0].LetterID)
	assert.Equal(t, "u-signee", records[0].ActorID)
	assert.Equal(t, "go-elms-test", records[0].AppId)
	assert.NotEmpty(t, records[0].Caller)

	assert.Equal(t, "id-1", records[1].LetterID)
	assert.Empty(t, records[1].ActorID)
	assert.Equal(t, "mailbox unavailable", records[1].Error)
	assert.Equal(t, 30, records[1].LogLevelId)
}

func TestDBLogWriterDropsWhenFull(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	writer := newDBLogWriter(sink, "go-elms-test", 1)

	for i := 0; i < 5; i++ {
		writer.Add(zapcore.Entry{Level: zapcore.InfoLevel, Message: "burst", Time: time.Now()}, logContext{})
	}
	// one record is held by the blocked sink, one sits in the buffer
	assert.GreaterOrEqual(t, writer.Dropped(), int64(3))

	close(sink.block)
	require.NoError(t, writer.Close(context.Background()))
	assert.Equal(t, int64(5), writer.Dropped()+int64(len(sink.snapshot())))
}

func TestLevelID(t *testing.T) {
	assert.Equal(t, 10, levelID(zapcore.DebugLevel))
	assert.Equal(t, 40, levelID(zapcore.ErrorLevel))
	assert.Equal(t, 50, levelID(zapcore.DPanicLevel))
}
