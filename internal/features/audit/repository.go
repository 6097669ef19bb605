package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows an audit log listing. Zero fields match everything.
type Filter struct {
	Action   common_models.AuditAction
	Module   string
	RecordID string
	ActorID  string
	From     time.Time
	To       time.Time
}

func (f Filter) matches(log common_models.AuditLog) bool {
	switch {
	case f.Action != "" && log.Action != f.Action:
		return false
	case f.Module != "" && log.Module != f.Module:
		return false
	case f.RecordID != "" && log.RecordID != f.RecordID:
		return false
	case f.ActorID != "" && log.ActorID != f.ActorID:
		return false
	case !f.From.IsZero() && log.Timestamp.Before(f.From):
		return false
	case !f.To.IsZero() && !log.Timestamp.Before(f.To):
		return false
	}
	return true
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.Module != "" {
		q["module"] = f.Module
	}
	if f.RecordID != "" {
		q["record_id"] = f.RecordID
	}
	if f.ActorID != "" {
		q["actor_id"] = f.ActorID
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		ts := bson.M{}
		if !f.From.IsZero() {
			ts["$gte"] = f.From
		}
		if !f.To.IsZero() {
			ts["$lt"] = f.To
		}
		q["timestamp"] = ts
	}
	return q
}

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	// List returns one page of matching entries, newest first, plus the total match count.
	List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error)
}

// NewAuditRepository picks the Mongo implementation when a database is configured.
func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	if mongodb == nil {
		return NewMemoryAuditRepository()
	}
	return &AuditRepositoryImpl{
		db:         mongodb,
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

type AuditRepositoryImpl struct {
	db         *database.MongodbDB
	Collection *mongo.Collection
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.Collection.InsertOne(ctx, log)
	return database.Classify("insert audit log", err)
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := filter.query()
	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, database.Classify("count audit logs", err)
	}

	opts := options.Find().SetSkip(offset).SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, database.Classify("list audit logs", err)
	}
	logs := []common_models.AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, 0, database.Classify("decode audit logs", err)
	}
	return logs, total, nil
}

type MemoryAuditRepository struct {
	mu   sync.RWMutex
	logs []common_models.AuditLog
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(_ context.Context, log common_models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *MemoryAuditRepository) List(_ context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error) {
	r.mu.RLock()
	matched := make([]common_models.AuditLog, 0, len(r.logs))
	for _, log := range r.logs {
		if filter.matches(log) {
			matched = append(matched, log)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := int64(len(matched))
	if offset >= total {
		return []common_models.AuditLog{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}
