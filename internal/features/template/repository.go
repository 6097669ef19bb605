package template

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go-elms/internal/database"
	apperrors "go-elms/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *LetterTemplate) error
	GetByID(ctx context.Context, id string) (*LetterTemplate, error)
	List(ctx context.Context, category string) ([]LetterTemplate, error)
	Update(ctx context.Context, template *LetterTemplate) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

func NewTemplateRepository(db *database.MongodbDB) TemplateRepository {
	if db == nil {
		return NewMemoryTemplateRepository()
	}
	return &TemplateRepositoryImpl{
		db:         db,
		collection: db.DB.Collection("letter_templates"),
	}
}

type TemplateRepositoryImpl struct {
	db         *database.MongodbDB
	collection *mongo.Collection
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, template *LetterTemplate) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, template)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError("template", "id", template.ID)
	}
	return database.Classify("insert template", err)
}

func (r *TemplateRepositoryImpl) GetByID(ctx context.Context, id string) (*LetterTemplate, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var template LetterTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError("template", id)
	}
	if err != nil {
		return nil, database.Classify("find template", err)
	}
	return &template, nil
}

func (r *TemplateRepositoryImpl) List(ctx context.Context, category string) ([]LetterTemplate, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, database.Classify("list templates", err)
	}
	defer cursor.Close(ctx)

	templates := []LetterTemplate{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, database.Classify("decode templates", err)
	}
	return templates, nil
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, template *LetterTemplate) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	if err != nil {
		return database.Classify("update template", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("template", template.ID)
	}
	return nil
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return database.Classify("delete template", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundError("template", id)
	}
	return nil
}

func (r *TemplateRepositoryImpl) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return n, database.Classify("count templates", err)
}

type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]*LetterTemplate
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{templates: make(map[string]*LetterTemplate)}
}

func (r *MemoryTemplateRepository) Create(_ context.Context, template *LetterTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[template.ID]; exists {
		return apperrors.NewConflictError("template", "id", template.ID)
	}
	r.templates[template.ID] = template.clone()
	return nil
}

func (r *MemoryTemplateRepository) GetByID(_ context.Context, id string) (*LetterTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("template", id)
	}
	return tpl.clone(), nil
}

func (r *MemoryTemplateRepository) List(_ context.Context, category string) ([]LetterTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	templates := make([]LetterTemplate, 0, len(r.templates))
	for _, tpl := range r.templates {
		if category != "" && tpl.Category != category {
			continue
		}
		templates = append(templates, *tpl.clone())
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (r *MemoryTemplateRepository) Update(_ context.Context, template *LetterTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[template.ID]; !ok {
		return apperrors.NewNotFoundError("template", template.ID)
	}
	r.templates[template.ID] = template.clone()
	return nil
}

func (r *MemoryTemplateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return apperrors.NewNotFoundError("template", id)
	}
	delete(r.templates, id)
	return nil
}

func (r *MemoryTemplateRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.templates)), nil
}
