package letter

import (
	"context"
	"errors"
	"time"

	"go-elms/internal/database"
	"go-elms/pkg/condition"
	apperrors "go-elms/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists letters in the "letters" collection. Updates are
// compare-and-swap on the version field, so two writers of the same letter
// can never both win.
type MongoStore struct {
	broadcaster

	db         *database.MongodbDB
	collection *mongo.Collection
	compiler   *condition.Compiler
	now        func() time.Time
}

func NewMongoStore(db *database.MongodbDB) *MongoStore {
	return &MongoStore{
		db:         db,
		collection: db.DB.Collection("letters"),
		compiler:   condition.NewCompiler(),
		now:        time.Now,
	}
}

// EnsureIndexes creates the unique reference index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	})
	return database.Classify("create letter indexes", err)
}

func (s *MongoStore) filterDocument(filter Filter) (bson.M, error) {
	group := &condition.Group{}
	if filter.Status != "" {
		group.Rules = append(group.Rules, condition.Rule{Field: "status", Operator: "eq", Value: string(filter.Status)})
	}
	if filter.CreatedBy != "" {
		group.Rules = append(group.Rules, condition.Rule{Field: "created_by", Operator: "eq", Value: filter.CreatedBy})
	}
	if filter.Query != "" {
		group.Groups = append(group.Groups, condition.Group{
			Operator: "OR",
			Rules: []condition.Rule{
				{Field: "subject", Operator: "contains", Value: filter.Query},
				{Field: "reference", Operator: "contains", Value: filter.Query},
				{Field: "department", Operator: "contains", Value: filter.Query},
			},
		})
	}
	return s.compiler.Compile(group)
}

func (s *MongoStore) List(ctx context.Context, filter Filter) ([]*Letter, error) {
	query, err := s.filterDocument(filter)
	if err != nil {
		return nil, apperrors.NewValidationError("filter", err.Error())
	}

	ctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, database.Classify("list letters", err)
	}
	defer cursor.Close(ctx)

	letters := []*Letter{}
	if err := cursor.All(ctx, &letters); err != nil {
		return nil, database.Classify("decode letters", err)
	}
	return letters, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, key string) (*Letter, error) {
	ctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	var l Letter
	err := s.collection.FindOne(ctx, filter).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError("letter", key)
	}
	if err != nil {
		return nil, database.Classify("find letter", err)
	}
	return &l, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Letter, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id)
}

func (s *MongoStore) GetByReference(ctx context.Context, reference string) (*Letter, error) {
	return s.findOne(ctx, bson.M{"reference": reference}, reference)
}

func (s *MongoStore) Add(ctx context.Context, l *Letter) error {
	record := l.Clone()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	record.Version = 1
	if err := CheckInvariants(record); err != nil {
		return err
	}

	ctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("letter", "id or reference", record.Reference)
		}
		return database.Classify("insert letter", err)
	}

	l.Version = record.Version
	l.CreatedAt = record.CreatedAt
	l.UpdatedAt = record.UpdatedAt

	s.publish(Event{Type: EventCreated, Letter: record})
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id string, expectedVersion int64, mutate func(*Letter) error) (*Letter, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != 0 && prev.Version != expectedVersion {
		return nil, apperrors.NewStaleVersionError("letter", id, expectedVersion, prev.Version)
	}

	working := prev.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := checkTransition(prev, working); err != nil {
		return nil, err
	}
	working.UpdatedAt = s.now()
	working.Version = prev.Version + 1
	if err := CheckInvariants(working); err != nil {
		return nil, err
	}

	wctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	res, err := s.collection.ReplaceOne(wctx, bson.M{"_id": id, "version": prev.Version}, working)
	if err != nil {
		return nil, database.Classify("update letter", err)
	}
	if res.MatchedCount == 0 {
		// Lost the race: someone else wrote in between.
		current, gerr := s.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, apperrors.NewStaleVersionError("letter", id, prev.Version, current.Version)
	}

	s.publish(Event{Type: EventUpdated, Letter: working, Previous: prev})
	return working.Clone(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string, guard func(*Letter) error) error {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(prev.Clone()); err != nil {
			return err
		}
	}

	dctx, cancel := s.db.WithTimeout(ctx)
	defer cancel()

	res, err := s.collection.DeleteOne(dctx, bson.M{"_id": id, "version": prev.Version})
	if err != nil {
		return database.Classify("delete letter", err)
	}
	if res.DeletedCount == 0 {
		return &apperrors.ConflictError{Resource: "letter", Message: "'" + id + "' changed while being deleted"}
	}

	s.publish(Event{Type: EventDeleted, Letter: prev})
	return nil
}
