package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kinhub/kinhub/internal/models"
)

type FamilyRepo struct {
	col *mongo.Collection
}

func NewFamilyRepo(db *mongo.Database) *FamilyRepo {
	return &FamilyRepo{col: db.Collection("families")}
}

func (r *FamilyRepo) Create(ctx context.Context, f *models.Family) error {
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return err
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *FamilyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Family, error) {
	var f models.Family
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FamilyRepo) FindByPasscode(ctx context.Context, passcode string) (*models.Family, error) {
	var f models.Family
	err := r.col.FindOne(ctx, bson.M{"passcode": passcode}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FamilyRepo) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Family, error) {
	cur, err := r.col.Find(ctx, bson.M{"members.user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Family
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember appends a member guarded against duplicates at the query level:
// the filter excludes families that already contain the user, so a concurrent
// double-join can never produce two entries.
func (r *FamilyRepo) AddMember(ctx context.Context, familyID primitive.ObjectID, m models.FamilyMember) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": familyID, "members.user_id": bson.M{"$ne": m.UserID}},
		bson.M{
			"$push": bson.M{"members": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrDuplicateMember
	}
	return nil
}

var ErrDuplicateMember = errors.New("user is already a member")

func (r *FamilyRepo) RemoveMember(ctx context.Context, familyID, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, familyID, bson.M{
		"$pull": bson.M{"members": bson.M{"user_id": userID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *FamilyRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FamilyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FamilyRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
