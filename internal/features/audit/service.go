package audit

import (
	"context"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/pkg/utils"

	"github.com/google/uuid"
)

const systemActor = "system"

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

// Page is one page of audit entries.
type Page struct {
	Logs  []common_models.AuditLog `json:"logs"`
	Total int64                    `json:"total"`
	Page  int64                    `json:"page"`
	Limit int64                    `json:"limit"`
}

type AuditService interface {
	// LogChange records who did what. The actor is taken from the claims in ctx,
	// falling back to the system actor for background work.
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter Filter, page, limit int64) (*Page, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder

	now func() time.Time
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID, actorName := systemActor, ""
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok && claims != nil {
		actorID, actorName = claims.UserID, claims.Name
	}

	return s.Repo.Create(ctx, common_models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		ActorName: actorName,
		Changes:   changes,
		Timestamp: s.now(),
	})
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter Filter, page, limit int64) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	logs, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	s.fillActorNames(ctx, logs)

	return &Page{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}

// fillActorNames resolves names for entries written without one. A failed
// lookup leaves them as "Unknown User".
func (s *AuditServiceImpl) fillActorNames(ctx context.Context, logs []common_models.AuditLog) {
	var missing []string
	seen := make(map[string]bool)
	for _, log := range logs {
		if log.ActorName == "" && log.ActorID != systemActor && log.ActorID != "" && !seen[log.ActorID] {
			seen[log.ActorID] = true
			missing = append(missing, log.ActorID)
		}
	}

	names := make(map[string]string, len(missing))
	if len(missing) > 0 && s.UserRepo != nil {
		if users, err := s.UserRepo.FindByIDs(ctx, missing); err == nil {
			for _, u := range users {
				names[u.ID] = u.Name
			}
		}
	}

	for i, log := range logs {
		switch {
		case log.ActorName != "":
		case log.ActorID == systemActor || log.ActorID == "":
			logs[i].ActorName = "System"
		case names[log.ActorID] != "":
			logs[i].ActorName = names[log.ActorID]
		default:
			logs[i].ActorName = "Unknown User"
		}
	}
}
