package database

import (
	"context"
	"errors"
	"log"
	"time"

	"go-elms/internal/config"
	apperrors "go-elms/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

type MongodbDB struct {
	Client  *mongo.Client
	DB      *mongo.Database
	Timeout time.Duration
}

// NewDatabase creates a new MongoDB database connection with lifecycle management.
// With the memory storage backend no connection is made and nil is returned;
// feature repositories fall back to their in-memory implementations.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	if !cfg.UseMongo() {
		log.Println("Storage backend: memory")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	db := client.Database(cfg.DBName)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{Client: client, DB: db, Timeout: cfg.DBTimeout}, nil
}

// WithTimeout bounds a single database round trip.
func (m *MongodbDB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Classify turns driver errors into application errors. Deadline expiry
// becomes a TimeoutError so callers can tell it apart from other failures.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return apperrors.NewTimeoutError(op, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.NewInternalError(op, err)
}

// Ping checks the server answers within the configured timeout.
func (m *MongodbDB) Ping(ctx context.Context) error {
	ctx, cancel := m.WithTimeout(ctx)
	defer cancel()
	return Classify("ping", m.Client.Ping(ctx, nil))
}
