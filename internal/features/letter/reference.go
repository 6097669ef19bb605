package letter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-elms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReferenceGenerator hands out PREFIX-YYYYMM-NNNN references. Numbers are
// monotonic within a month and widen past 9999 instead of wrapping.
type ReferenceGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

func FormatReference(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("200601"), seq)
}

// ParseReference splits a reference into prefix, period (YYYYMM) and sequence.
func ParseReference(ref string) (prefix, period string, seq int64, err error) {
	parts := strings.Split(ref, "-")
	if len(parts) < 3 {
		return "", "", 0, fmt.Errorf("malformed reference %q", ref)
	}
	n := len(parts)
	period = parts[n-2]
	if len(period) != 6 {
		return "", "", 0, fmt.Errorf("malformed period in reference %q", ref)
	}
	if _, err := strconv.Atoi(period); err != nil {
		return "", "", 0, fmt.Errorf("malformed period in reference %q", ref)
	}
	seq, err = strconv.ParseInt(parts[n-1], 10, 64)
	if err != nil || seq < 0 {
		return "", "", 0, fmt.Errorf("malformed sequence in reference %q", ref)
	}
	prefix = strings.Join(parts[:n-2], "-")
	if prefix == "" {
		return "", "", 0, fmt.Errorf("missing prefix in reference %q", ref)
	}
	return prefix, period, seq, nil
}

// MemoryReferenceGenerator counts per period under a mutex. The first use of
// a period seeds the counter from the highest reference already stored.
type MemoryReferenceGenerator struct {
	prefix string
	store  Store

	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryReferenceGenerator(prefix string, store Store) *MemoryReferenceGenerator {
	return &MemoryReferenceGenerator{
		prefix:   prefix,
		store:    store,
		counters: make(map[string]int64),
	}
}

func (g *MemoryReferenceGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	period := at.Format("200601")

	g.mu.Lock()
	defer g.mu.Unlock()

	current, seeded := g.counters[period]
	if !seeded && g.store != nil {
		highest, err := highestSequence(ctx, g.store, g.prefix, period)
		if err != nil {
			return "", err
		}
		current = highest
	}
	current++
	g.counters[period] = current
	return FormatReference(g.prefix, at, current), nil
}

func highestSequence(ctx context.Context, store Store, prefix, period string) (int64, error) {
	letters, err := store.List(ctx, Filter{Query: prefix + "-" + period + "-"})
	if err != nil {
		return 0, err
	}
	var highest int64
	for _, l := range letters {
		p, per, seq, err := ParseReference(l.Reference)
		if err != nil || p != prefix || per != period {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoReferenceGenerator increments a per-period counter document with $inc,
// which is atomic across processes.
type MongoReferenceGenerator struct {
	prefix     string
	db         *database.MongodbDB
	collection *mongo.Collection
	store      Store

	mu     sync.Mutex
	seeded map[string]bool
}

func NewMongoReferenceGenerator(prefix string, db *database.MongodbDB, store Store) *MongoReferenceGenerator {
	return &MongoReferenceGenerator{
		prefix:     prefix,
		db:         db,
		collection: db.DB.Collection("letter_counters"),
		store:      store,
		seeded:     make(map[string]bool),
	}
}

func (g *MongoReferenceGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	period := at.Format("200601")
	key := g.prefix + "-" + period

	if err := g.seed(ctx, key, period); err != nil {
		return "", err
	}

	ctx, cancel := g.db.WithTimeout(ctx)
	defer cancel()

	var doc counterDocument
	err := g.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return "", database.Classify("next reference", err)
	}
	return FormatReference(g.prefix, at, doc.Seq), nil
}

// seed raises the counter to the highest stored reference once per period,
// so letters written before the counter existed are never reissued.
func (g *MongoReferenceGenerator) seed(ctx context.Context, key, period string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seeded[key] {
		return nil
	}

	highest, err := highestSequence(ctx, g.store, g.prefix, period)
	if err != nil {
		return err
	}

	ctx, cancel := g.db.WithTimeout(ctx)
	defer cancel()
	_, err = g.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$max": bson.M{"seq": highest}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return database.Classify("seed reference counter", err)
	}
	g.seeded[key] = true
	return nil
}
