package notification

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

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

func NewNotificationRepository(db *database.MongodbDB) NotificationRepository {
	if db == nil {
		return NewMemoryNotificationRepository()
	}
	return &NotificationRepositoryImpl{
		db:         db,
		collection: db.DB.Collection("notifications"),
	}
}

type NotificationRepositoryImpl struct {
	db         *database.MongodbDB
	collection *mongo.Collection
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *Notification) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	notification.CreatedAt = time.Now()
	notification.IsRead = false
	_, err := r.collection.InsertOne(ctx, notification)
	return database.Classify("insert notification", err)
}

func (r *NotificationRepositoryImpl) GetByUserID(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	skip := (page - 1) * limit
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, database.Classify("count notifications", err)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, database.Classify("list notifications", err)
	}
	defer cursor.Close(ctx)

	notifications := []Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, database.Classify("decode notifications", err)
	}

	return notifications, total, nil
}

func (r *NotificationRepositoryImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	})
	return count, database.Classify("count unread notifications", err)
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, id string, userID string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{
			"$set": bson.M{
				"is_read": true,
				"read_at": now,
			},
		},
	)
	if err != nil {
		return database.Classify("mark notification read", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("notification", id)
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{
			"$set": bson.M{
				"is_read": true,
				"read_at": now,
			},
		},
	)
	return database.Classify("mark notifications read", err)
}

type MemoryNotificationRepository struct {
	mu    sync.RWMutex
	items []*Notification
	now   func() time.Time
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{now: time.Now}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, notification *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.CreatedAt = r.now()
	notification.IsRead = false
	c := *notification
	r.items = append(r.items, &c)
	return nil
}

func (r *MemoryNotificationRepository) GetByUserID(_ context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	r.mu.RLock()
	var matched []Notification
	for _, n := range r.items {
		if n.UserID == userID {
			matched = append(matched, *n)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= total {
		return []Notification{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryNotificationRepository) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(_ context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id && item.UserID == userID {
			now := r.now()
			item.IsRead = true
			item.ReadAt = &now
			return nil
		}
	}
	return apperrors.NewNotFoundError("notification", id)
}

func (r *MemoryNotificationRepository) MarkAllAsRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &now
		}
	}
	return nil
}
