package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
)

type announcementRepo struct {
	orderColl
}

func newAnnouncementRepo(db *mongo.Database) announcementRepo {
	return announcementRepo{orderColl{
		noun:  "announcement",
		coll:  db.Collection(announcementsColl),
		scope: "page",
		locks: db.Collection(scopeLocksColl),
	}}
}

func (r announcementRepo) Insert(ctx context.Context, a *model.Announcement) error {
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("creating announcement: %w", err)
	}
	return nil
}

func (r announcementRepo) Get(ctx context.Context, id string) (*model.Announcement, error) {
	var a model.Announcement
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("announcement %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting announcement: %w", err)
	}
	return &a, nil
}

// List returns the announcements of a page by ascending order. An empty page
// lists every page, grouped by page.
func (r announcementRepo) List(ctx context.Context, page string, activeOnly bool) ([]model.Announcement, error) {
	filter := bson.M{}
	if page != "" {
		filter["page"] = page
	}
	if activeOnly {
		filter["is_active"] = true
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "page", Value: 1}, {Key: "order", Value: 1}, {Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	var out []model.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding announcements: %w", err)
	}
	return out, nil
}

// ListPages returns every page that has at least one announcement.
func (r announcementRepo) ListPages(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "page", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing announcement pages: %w", err)
	}
	pages := make([]string, 0, len(values))
	for _, v := range values {
		if p, ok := v.(string); ok {
			pages = append(pages, p)
		}
	}
	sort.Strings(pages)
	return pages, nil
}

func (r announcementRepo) Update(ctx context.Context, a *model.Announcement) error {
	set := bson.M{
		"is_active":  a.IsActive,
		"title":      a.Title,
		"content":    a.Content,
		"link_url":   a.LinkURL,
		"updated_at": a.UpdatedAt,
	}
	unset := bson.M{}
	if a.StartsAt != nil {
		set["starts_at"] = *a.StartsAt
	} else {
		unset["starts_at"] = ""
	}
	if a.EndsAt != nil {
		set["ends_at"] = *a.EndsAt
	} else {
		unset["ends_at"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": a.ID}, update)
	if err != nil {
		return fmt.Errorf("updating announcement: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("announcement %s", a.ID)
	}
	return nil
}

func (r announcementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting announcement: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("announcement %s", id)
	}
	return nil
}
