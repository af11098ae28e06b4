// Package mongostore is the MongoDB content backend. It implements the
// store.ContentStore interfaces for slideshows, slides and announcements.
//
// Transactions need a replica set (a single-node one is enough).
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/sangam/internal/store"
)

// Collection names.
const (
	slideshowsColl    = "slideshows"
	slidesColl        = "slides"
	slideMovesColl    = "slide_moves"
	announcementsColl = "announcements"
	scopeLocksColl    = "scope_locks"
	countersColl      = "counters"
)

// Store is the MongoDB ContentStore.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	repos
}

var _ store.ContentStore = (*Store)(nil)

// Connect dials uri, checks the connection and ensures the indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an already connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{client: client, db: db, repos: repos{db: db}}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database returns the underlying database handle.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// placement index is what turns a duplicate page and section into a conflict.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		slideshowsColl: {{
			Keys:    bson.D{{Key: "page", Value: 1}, {Key: "section", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("placement"),
		}},
		slidesColl: {{
			Keys: bson.D{{Key: "slideshow_id", Value: 1}, {Key: "order", Value: 1}},
		}},
		slideMovesColl: {{
			Keys: bson.D{{Key: "slide_id", Value: 1}, {Key: "moved_at", Value: -1}},
		}},
		announcementsColl: {{
			Keys: bson.D{{Key: "page", Value: 1}, {Key: "order", Value: 1}},
		}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating %s indexes: %w", coll, err)
		}
	}
	return nil
}

// WithinTx runs fn in a multi-document transaction. fn must use the context
// it is handed; operations on it join the session. WithTransaction retries fn
// on transient errors such as write conflicts between concurrent reorders.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.ContentRepos) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, s.repos)
	})
	return err
}

// repos binds the content repositories to one database. Transactions travel
// in the context, so the same repositories serve both modes.
type repos struct {
	db *mongo.Database
}

func (r repos) Slideshows() store.SlideshowRepo {
	return slideshowRepo{db: r.db, coll: r.db.Collection(slideshowsColl)}
}

func (r repos) Slides() store.SlideRepo {
	return newSlideRepo(r.db)
}

func (r repos) Announcements() store.AnnouncementRepo {
	return newAnnouncementRepo(r.db)
}

// nextSequence returns the next value of a named counter.
func nextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(countersColl).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s counter: %w", name, err)
	}
	return doc.Seq, nil
}
