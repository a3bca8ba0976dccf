package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FamilyRoleAdmin  = "Admin"
	FamilyRoleMember = "Member"
)

type FamilyMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	Role     string             `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joinedAt"`
}

type Family struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Passcode  string             `bson:"passcode" json:"-"`
	Members   []FamilyMember     `bson:"members" json:"members"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// HasMember reports whether userID already appears in the member list.
func (f *Family) HasMember(userID primitive.ObjectID) bool {
	for _, m := range f.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberRole returns the family role for userID, or "" when not a member.
func (f *Family) MemberRole(userID primitive.ObjectID) string {
	for _, m := range f.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}
