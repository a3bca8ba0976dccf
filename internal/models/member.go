package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a family-tree node. Parent and spouse pointers are stored flat;
// layout happens client-side.
type Member struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FamilyID  primitive.ObjectID   `bson:"family_id" json:"familyId"`
	Name      string               `bson:"name" json:"name"`
	Birthday  *time.Time           `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Avatar    string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	ParentIDs []primitive.ObjectID `bson:"parent_ids,omitempty" json:"parentIds,omitempty"`
	SpouseID  *primitive.ObjectID  `bson:"spouse_id,omitempty" json:"spouseId,omitempty"`
	CreatedBy primitive.ObjectID   `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}
