package verify

import (
	"context"

	"go-elms/internal/config"
	"go-elms/internal/features/letter"
	apperrors "go-elms/pkg/errors"

	"go.uber.org/zap"
)

type VerifyService interface {
	Verify(ctx context.Context, key string) (*VerificationResult, error)
}

type VerifyServiceImpl struct {
	Store  letter.Store
	Config *config.Config
	Logger *zap.Logger
}

func NewVerifyService(store letter.Store, cfg *config.Config, logger *zap.Logger) VerifyService {
	return &VerifyServiceImpl{Store: store, Config: cfg, Logger: logger}
}

// lookup tries the reference first, then the id.
func (s *VerifyServiceImpl) lookup(ctx context.Context, key string) (*letter.Letter, error) {
	l, err := s.Store.GetByReference(ctx, key)
	if err == nil {
		return l, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	l, err = s.Store.Get(ctx, key)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewNotFoundError("letter", key)
	}
	return l, err
}

func (s *VerifyServiceImpl) Verify(ctx context.Context, key string) (*VerificationResult, error) {
	if key == "" {
		return nil, apperrors.NewValidationError("key", "reference or id is required")
	}
	l, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	res := &VerificationResult{
		Reference:    l.Reference,
		Subject:      l.Subject,
		Date:         l.CreatedAt,
		Organization: s.Config.OrgName,
		Status:       string(l.Status),
	}
	if l.IsConfidential {
		res.Subject = RedactedSubject
	}

	if l.Signature != nil {
		res.SigneeName = l.Signature.SignedBy
		res.SigneeTitle = l.Signature.SignedByTitle
		res.Date = l.Signature.SignedAt

		sum, err := letter.Checksum(l)
		if err != nil {
			return nil, apperrors.NewInternalError("checksum", err)
		}
		res.Valid = l.Status == letter.StatusSigned && sum == l.Signature.Checksum
		if !res.Valid {
			s.Logger.Warn("Signature checksum mismatch", zap.String("letter_id", l.ID), zap.String("reference", l.Reference))
		}
	}
	return res, nil
}
