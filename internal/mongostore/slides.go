package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
)

// slideDoc is a slide as stored. The image bytes live on the document but
// are projected away from every read except GetImage.
type slideDoc struct {
	model.Slide `bson:",inline"`
	Image       []byte `bson:"image,omitempty"`
}

// moveDoc is a SlideMove as stored; the numeric id comes from a counter.
type moveDoc struct {
	ID              int64     `bson:"_id"`
	SlideID         string    `bson:"slide_id"`
	FromSlideshowID string    `bson:"from_slideshow_id"`
	ToSlideshowID   string    `bson:"to_slideshow_id"`
	FromOrder       int       `bson:"from_order"`
	ToOrder         int       `bson:"to_order"`
	MovedAt         time.Time `bson:"moved_at"`
	MovedBy         string    `bson:"moved_by,omitempty"`
}

var withoutImage = bson.M{"image": 0}

type slideRepo struct {
	orderColl
	db *mongo.Database
}

func newSlideRepo(db *mongo.Database) slideRepo {
	return slideRepo{
		orderColl: orderColl{
			noun:   "slide",
			coll:   db.Collection(slidesColl),
			scope:  "slideshow_id",
			parent: db.Collection(slideshowsColl),
			locks:  db.Collection(scopeLocksColl),
		},
		db: db,
	}
}

func (r slideRepo) Insert(ctx context.Context, s *model.Slide) error {
	if _, err := r.coll.InsertOne(ctx, slideDoc{Slide: *s}); err != nil {
		return fmt.Errorf("creating slide: %w", err)
	}
	return nil
}

func (r slideRepo) Get(ctx context.Context, id string) (*model.Slide, error) {
	var s model.Slide
	err := r.coll.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(withoutImage),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("slide %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting slide: %w", err)
	}
	return &s, nil
}

// List returns the slides of a slideshow by ascending order.
func (r slideRepo) List(ctx context.Context, slideshowID string, activeOnly bool) ([]model.Slide, error) {
	filter := bson.M{"slideshow_id": slideshowID}
	if activeOnly {
		filter["is_active"] = true
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetProjection(withoutImage).
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}
	var out []model.Slide
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding slides: %w", err)
	}
	return out, nil
}

func (r slideRepo) Update(ctx context.Context, s *model.Slide) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": bson.M{
		"is_active":   s.IsActive,
		"title":       s.Title,
		"subtitle":    s.Subtitle,
		"button_text": s.ButtonText,
		"image_url":   s.ImageURL,
		"link_url":    s.LinkURL,
		"duration_ms": s.DurationMS,
		"updated_at":  s.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("updating slide: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("slide %s", s.ID)
	}
	return nil
}

func (r slideRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting slide: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("slide %s", id)
	}
	if _, err := r.db.Collection(slideMovesColl).DeleteMany(ctx, bson.M{"slide_id": id}); err != nil {
		return fmt.Errorf("deleting slide moves: %w", err)
	}
	return nil
}

// SetImage stores the uploaded image of a slide.
func (r slideRepo) SetImage(ctx context.Context, id string, data []byte, mime string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image":      data,
		"image_mime": mime,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("setting slide image: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("slide %s", id)
	}
	return nil
}

// GetImage returns the uploaded image of a slide, or nil data when it has none.
func (r slideRepo) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	var doc struct {
		Image []byte `bson:"image"`
		Mime  string `bson:"image_mime"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"image": 1, "image_mime": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", apperr.NotFound("slide %s", id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting slide image: %w", err)
	}
	return doc.Image, doc.Mime, nil
}

// RecordMove appends a slideshow change to the slide's history.
func (r slideRepo) RecordMove(ctx context.Context, m *model.SlideMove) error {
	id, err := nextSequence(ctx, r.db, slideMovesColl)
	if err != nil {
		return err
	}
	_, err = r.db.Collection(slideMovesColl).InsertOne(ctx, moveDoc{
		ID:              id,
		SlideID:         m.SlideID,
		FromSlideshowID: m.FromSlideshowID,
		ToSlideshowID:   m.ToSlideshowID,
		FromOrder:       m.FromOrder,
		ToOrder:         m.ToOrder,
		MovedAt:         m.MovedAt,
		MovedBy:         m.MovedBy,
	})
	if err != nil {
		return fmt.Errorf("recording slide move: %w", err)
	}
	m.ID = id
	return nil
}

// ListMoves returns a slide's moves, newest first.
func (r slideRepo) ListMoves(ctx context.Context, slideID string) ([]model.SlideMove, error) {
	cur, err := r.db.Collection(slideMovesColl).Find(ctx, bson.M{"slide_id": slideID},
		options.Find().SetSort(bson.D{{Key: "moved_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing slide moves: %w", err)
	}
	var docs []moveDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding slide moves: %w", err)
	}

	moves := make([]model.SlideMove, len(docs))
	for i, d := range docs {
		moves[i] = model.SlideMove{
			ID:              d.ID,
			SlideID:         d.SlideID,
			FromSlideshowID: d.FromSlideshowID,
			ToSlideshowID:   d.ToSlideshowID,
			FromOrder:       d.FromOrder,
			ToOrder:         d.ToOrder,
			MovedAt:         d.MovedAt,
			MovedBy:         d.MovedBy,
		}
	}
	return moves, nil
}
