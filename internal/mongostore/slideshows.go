package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
)

type slideshowRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func (r slideshowRepo) Insert(ctx context.Context, s *model.Slideshow) error {
	_, err := r.coll.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("slideshow for page %q section %q already exists", s.Page, s.Section)
	}
	if err != nil {
		return fmt.Errorf("creating slideshow: %w", err)
	}
	return nil
}

func (r slideshowRepo) Get(ctx context.Context, id string) (*model.Slideshow, error) {
	return r.findOne(ctx, bson.M{"_id": id}, func() error {
		return apperr.NotFound("slideshow %s", id)
	})
}

func (r slideshowRepo) FindByPlacement(ctx context.Context, page, section string) (*model.Slideshow, error) {
	return r.findOne(ctx, bson.M{"page": page, "section": section}, func() error {
		return apperr.NotFound("slideshow for page %q section %q", page, section)
	})
}

func (r slideshowRepo) findOne(ctx context.Context, filter bson.M, notFound func() error) (*model.Slideshow, error) {
	var s model.Slideshow
	err := r.coll.FindOne(ctx, filter).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("getting slideshow: %w", err)
	}

	n, err := r.db.Collection(slidesColl).CountDocuments(ctx, bson.M{"slideshow_id": s.ID})
	if err != nil {
		return nil, fmt.Errorf("counting slides: %w", err)
	}
	s.SlideCount = int(n)
	return &s, nil
}

// List returns slideshows ordered by page and section, optionally only those
// of one page.
func (r slideshowRepo) List(ctx context.Context, page string) ([]model.Slideshow, error) {
	filter := bson.M{}
	if page != "" {
		filter["page"] = page
	}
	cur, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "page", Value: 1}, {Key: "section", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing slideshows: %w", err)
	}
	var out []model.Slideshow
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding slideshows: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	counts, err := r.slideCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].SlideCount = counts[out[i].ID]
	}
	return out, nil
}

func (r slideshowRepo) slideCounts(ctx context.Context) (map[string]int, error) {
	cur, err := r.db.Collection(slidesColl).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$slideshow_id", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("counting slides: %w", err)
	}
	var rows []struct {
		ID string `bson:"_id"`
		N  int    `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding slide counts: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.N
	}
	return counts, nil
}

func (r slideshowRepo) Update(ctx context.Context, s *model.Slideshow) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": bson.M{
		"page":        s.Page,
		"section":     s.Section,
		"title":       s.Title,
		"interval_ms": s.IntervalMS,
		"autoplay":    s.Autoplay,
		"is_active":   s.IsActive,
		"updated_at":  s.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("slideshow for page %q section %q already exists", s.Page, s.Section)
	}
	if err != nil {
		return fmt.Errorf("updating slideshow: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("slideshow %s", s.ID)
	}
	return nil
}

// Delete removes a slideshow together with its slides and their moves.
func (r slideshowRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting slideshow: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("slideshow %s", id)
	}

	slides := r.db.Collection(slidesColl)
	ids, err := slides.Distinct(ctx, "_id", bson.M{"slideshow_id": id})
	if err != nil {
		return fmt.Errorf("listing slides of slideshow: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := slides.DeleteMany(ctx, bson.M{"slideshow_id": id}); err != nil {
		return fmt.Errorf("deleting slides of slideshow: %w", err)
	}
	if _, err := r.db.Collection(slideMovesColl).DeleteMany(ctx, bson.M{"slide_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("deleting slide moves: %w", err)
	}
	return nil
}
