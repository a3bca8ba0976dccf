package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kinhub/kinhub/internal/models"
)

type MemoryRepo struct {
	col *mongo.Collection
}

func NewMemoryRepo(db *mongo.Database) *MemoryRepo {
	return &MemoryRepo{col: db.Collection("memories")}
}

func (r *MemoryRepo) Create(ctx context.Context, m *models.Memory) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Media == nil {
		m.Media = []models.MediaDescriptor{}
	}
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Memory, error) {
	var m models.Memory
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemoryRepo) FindByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Memory, error) {
	cur, err := r.col.Find(ctx, bson.M{"family_id": familyID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Memory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PushMedia appends descriptors in order. $push/$each keeps concurrent
// appends from clobbering each other, unlike a full-document save.
func (r *MemoryRepo) PushMedia(ctx context.Context, id primitive.ObjectID, media []models.MediaDescriptor) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"media": bson.M{"$each": media}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByCreatorAndSource returns the creator's memories that still carry at
// least one descriptor from the given backend.
func (r *MemoryRepo) FindByCreatorAndSource(ctx context.Context, userID primitive.ObjectID, source string) ([]models.Memory, error) {
	cur, err := r.col.Find(ctx, bson.M{"created_by": userID, "media.source": source})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Memory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemoryRepo) SetMedia(ctx context.Context, id primitive.ObjectID, media []models.MediaDescriptor) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"media": media, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type AlbumRepo struct {
	col *mongo.Collection
}

func NewAlbumRepo(db *mongo.Database) *AlbumRepo {
	return &AlbumRepo{col: db.Collection("albums")}
}

func (r *AlbumRepo) Create(ctx context.Context, a *models.Album) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Media == nil {
		a.Media = []models.MediaDescriptor{}
	}
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AlbumRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Album, error) {
	var a models.Album
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlbumRepo) FindByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Album, error) {
	cur, err := r.col.Find(ctx, bson.M{"family_id": familyID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Album
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AlbumRepo) PushMedia(ctx context.Context, id primitive.ObjectID, media []models.MediaDescriptor) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"media": bson.M{"$each": media}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMediaAt drops the descriptor at index using the two-step
// $unset + $pull-null trick, since $pull has no positional form.
func (r *AlbumRepo) RemoveMediaAt(ctx context.Context, id primitive.ObjectID, index int) error {
	field := bson.M{"media." + strconv.Itoa(index): 1}
	if _, err := r.col.UpdateByID(ctx, id, bson.M{"$unset": field}); err != nil {
		return err
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"media": nil},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *AlbumRepo) FindByCreatorAndSource(ctx context.Context, userID primitive.ObjectID, source string) ([]models.Album, error) {
	cur, err := r.col.Find(ctx, bson.M{"created_by": userID, "media.source": source})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Album
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AlbumRepo) SetMedia(ctx context.Context, id primitive.ObjectID, media []models.MediaDescriptor) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"media": media, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AlbumRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
