package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-elms/internal/config"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"go.uber.org/zap"
)

// LetterSource resolves a letter the actor is allowed to see.
type LetterSource interface {
	GetLetter(ctx context.Context, actor permission.Actor, id string) (*letter.Letter, error)
}

type renderKey struct {
	letterID string
	format   Format
}

type job struct {
	id     uint64
	cancel context.CancelFunc
}

// Manager runs renders with a cancel-and-replace policy: a new render of the
// same letter and format cancels the one still running, whose caller gets
// context.Canceled.
type Manager struct {
	Letters LetterSource
	Config  *config.Config
	Logger  *zap.Logger

	mu        sync.Mutex
	renderers map[Format]Renderer
	inflight  map[renderKey]*job
	seq       uint64
}

func NewManager(letters LetterSource, cfg *config.Config, logger *zap.Logger) *Manager {
	m := &Manager{
		Letters:   letters,
		Config:    cfg,
		Logger:    logger,
		renderers: make(map[Format]Renderer),
		inflight:  make(map[renderKey]*job),
	}
	m.Register(FormatHTML, HTMLRenderer{})
	m.Register(FormatPDF, PDFRenderer{})
	m.Register(FormatQR, QRRenderer{})
	return m
}

func (m *Manager) Register(format Format, r Renderer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderers[format] = r
}

func (m *Manager) renderer(format Format) (Renderer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.renderers[format]
	return r, ok
}

// start registers a job for key, cancelling whatever ran there before.
func (m *Manager) start(ctx context.Context, key renderKey) (context.Context, *job) {
	jobCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.inflight[key]; ok {
		prev.cancel()
		m.Logger.Debug("Render superseded", zap.String("letter_id", key.letterID), zap.String("format", string(key.format)))
	}
	m.seq++
	j := &job{id: m.seq, cancel: cancel}
	m.inflight[key] = j
	return jobCtx, j
}

func (m *Manager) finish(key renderKey, j *job) {
	m.mu.Lock()
	if cur, ok := m.inflight[key]; ok && cur.id == j.id {
		delete(m.inflight, key)
	}
	m.mu.Unlock()
	j.cancel()
}

type result struct {
	data []byte
	err  error
}

// Render renders the letter in the given format for the actor.
func (m *Manager) Render(ctx context.Context, actor permission.Actor, letterID string, format Format) (*Document, error) {
	if format == "" {
		format = FormatHTML
	}
	if _, ok := m.renderer(format); !ok {
		return nil, apperrors.NewValidationError("format", fmt.Sprintf("unsupported format %q", format))
	}

	l, err := m.Letters.GetLetter(ctx, actor, letterID)
	if err != nil {
		return nil, err
	}
	return m.RenderLetter(ctx, l, format)
}

// RenderLetter renders an already loaded letter; callers are responsible for
// visibility checks.
func (m *Manager) RenderLetter(ctx context.Context, l *letter.Letter, format Format) (*Document, error) {
	r, ok := m.renderer(format)
	if !ok {
		return nil, apperrors.NewValidationError("format", fmt.Sprintf("unsupported format %q", format))
	}
	vm := BuildViewModel(l.Clone(), m.Config)

	key := renderKey{letterID: l.ID, format: format}
	jobCtx, j := m.start(ctx, key)
	defer m.finish(key, j)

	runCtx := jobCtx
	if m.Config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(jobCtx, m.Config.RenderTimeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		data, err := r.Render(runCtx, vm)
		done <- result{data: data, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-runCtx.Done():
		res.err = runCtx.Err()
	}

	if res.err != nil {
		switch {
		case errors.Is(jobCtx.Err(), context.Canceled):
			return nil, context.Canceled
		case errors.Is(res.err, context.DeadlineExceeded):
			return nil, apperrors.NewTimeoutError("render "+string(format), res.err)
		case errors.Is(res.err, context.Canceled):
			return nil, context.Canceled
		}
		return nil, apperrors.NewInternalError("render "+string(format), res.err)
	}

	m.Logger.Debug("Letter rendered",
		zap.String("letter_id", l.ID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(res.data)),
	)
	return &Document{
		Format:      format,
		ContentType: r.ContentType(),
		Filename:    l.Reference + "." + r.Extension(),
		Data:        res.data,
	}, nil
}
