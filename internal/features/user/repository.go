package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/database"
	apperrors "go-elms/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *common_models.User) error
	FindByID(ctx context.Context, id string) (*common_models.User, error)
	FindByEmail(ctx context.Context, email string) (*common_models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]common_models.User, int64, error)
	UpdateRole(ctx context.Context, id, role string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// NewUserRepository picks the Mongo implementation when a database is configured.
func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	if mongodb == nil {
		return NewMemoryUserRepository()
	}
	return &UserRepositoryImpl{
		db:         mongodb,
		Collection: mongodb.DB.Collection("users"),
	}
}

type UserRepositoryImpl struct {
	db         *database.MongodbDB
	Collection *mongo.Collection
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *common_models.User) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	user.Email = normalizeEmail(user.Email)
	_, err := r.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError("user", "email", user.Email)
	}
	return database.Classify("insert user", err)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, filter bson.M, key string) (*common_models.User, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var user common_models.User
	err := r.Collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFoundError("user", key)
	}
	if err != nil {
		return nil, database.Classify("find user", err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*common_models.User, error) {
	email = normalizeEmail(email)
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	if len(ids) == 0 {
		return []common_models.User{}, nil
	}
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, database.Classify("find users", err)
	}
	var users []common_models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, database.Classify("decode users", err)
	}
	return users, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]common_models.User, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := bson.M{}
	for k, v := range filter {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		query[k] = v
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, database.Classify("count users", err)
	}

	opts := options.Find().SetSkip(offset).SetSort(bson.M{"name": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, database.Classify("list users", err)
	}
	var users []common_models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, database.Classify("decode users", err)
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) updateOne(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return database.Classify("update user", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("user", id)
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id, role string) error {
	return r.updateOne(ctx, id, bson.M{"role": role, "updated_at": time.Now().UTC()})
}

func (r *UserRepositoryImpl) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"last_login": at})
}

func (r *UserRepositoryImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	n, err := r.Collection.CountDocuments(ctx, bson.M{})
	return n, database.Classify("count users", err)
}

// MemoryUserRepository keeps users in a map keyed by id, with a unique email index.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]common_models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]common_models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *common_models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if _, ok := r.users[user.ID]; ok {
		return apperrors.NewConflictError("user", "id", user.ID)
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.NewConflictError("user", "email", user.Email)
	}
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*common_models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*common_models.User, error) {
	email = normalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", email)
	}
	u := r.users[id]
	return &u, nil
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []string) ([]common_models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]common_models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// List understands the role, status and department filters the API exposes.
func (r *MemoryUserRepository) List(_ context.Context, filter map[string]interface{}, limit, offset int64) ([]common_models.User, int64, error) {
	r.mu.RLock()
	matched := make([]common_models.User, 0, len(r.users))
	for _, u := range r.users {
		if matchesUser(u, filter) {
			matched = append(matched, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := int64(len(matched))
	if offset >= total {
		return []common_models.User{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func matchesUser(u common_models.User, filter map[string]interface{}) bool {
	for k, v := range filter {
		want, ok := v.(string)
		if !ok || want == "" {
			continue
		}
		var got string
		switch k {
		case "role":
			got = u.Role
		case "status":
			got = u.Status
		case "department":
			got = u.Department
		default:
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func (r *MemoryUserRepository) UpdateRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user", id)
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user", id)
	}
	u.LastLogin = &at
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
