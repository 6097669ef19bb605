package delivery

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-elms/internal/database"
	apperrors "go-elms/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EmailRepository interface {
	Create(ctx context.Context, email *Email) error
	UpdateStatus(ctx context.Context, id string, status EmailStatus, errorMsg string) error
	ListByLetter(ctx context.Context, letterID string) ([]Email, error)
}

func NewEmailRepository(mongodb *database.MongodbDB) EmailRepository {
	if mongodb == nil {
		return NewMemoryEmailRepository()
	}
	return &MongoEmailRepository{
		db:  mongodb,
		col: mongodb.DB.Collection("emails"),
	}
}

type MongoEmailRepository struct {
	db  *database.MongodbDB
	col *mongo.Collection
}

func (r *MongoEmailRepository) Create(ctx context.Context, email *Email) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	email.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, email)
	return database.Classify("insert email", err)
}

func (r *MongoEmailRepository) UpdateStatus(ctx context.Context, id string, status EmailStatus, errorMsg string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	set := bson.M{
		"status":        status,
		"error_message": errorMsg,
	}
	if status == EmailSent {
		set["sent_at"] = time.Now().UTC()
	}
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return database.Classify("update email", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("email", id)
	}
	return nil
}

func (r *MongoEmailRepository) ListByLetter(ctx context.Context, letterID string) ([]Email, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{"letter_id": letterID}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, database.Classify("list emails", err)
	}
	emails := []Email{}
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, database.Classify("decode emails", err)
	}
	return emails, nil
}

type MemoryEmailRepository struct {
	mu     sync.RWMutex
	emails map[string]Email
}

func NewMemoryEmailRepository() *MemoryEmailRepository {
	return &MemoryEmailRepository{emails: make(map[string]Email)}
}

func (r *MemoryEmailRepository) Create(_ context.Context, email *Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email.CreatedAt = time.Now().UTC()
	r.emails[email.ID] = *email
	return nil
}

func (r *MemoryEmailRepository) UpdateStatus(_ context.Context, id string, status EmailStatus, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.emails[id]
	if !ok {
		return apperrors.NewNotFoundError("email", id)
	}
	e.Status = status
	e.ErrorMsg = errorMsg
	if status == EmailSent {
		now := time.Now().UTC()
		e.SentAt = &now
	}
	r.emails[id] = e
	return nil
}

func (r *MemoryEmailRepository) ListByLetter(_ context.Context, letterID string) ([]Email, error) {
	r.mu.RLock()
	out := []Email{}
	for _, e := range r.emails {
		if e.LetterID == letterID {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
