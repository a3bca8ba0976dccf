package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID    primitive.ObjectID `bson:"family_id" json:"familyId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt    time.Time          `bson:"starts_at" json:"startsAt"`
	EndsAt      time.Time          `bson:"ends_at,omitempty" json:"endsAt,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID primitive.ObjectID `bson:"family_id" json:"familyId"`
	SenderID primitive.ObjectID `bson:"sender_id" json:"senderId"`
	Content  string             `bson:"content" json:"content"`
	SentAt   time.Time          `bson:"sent_at" json:"sentAt"`
}

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	FamilyID  primitive.ObjectID `bson:"family_id" json:"familyId"`
	Kind      string             `bson:"kind" json:"kind"`
	Payload   map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusExpired  = "expired"
)

type Invitation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID  primitive.ObjectID `bson:"family_id" json:"familyId"`
	Email     string             `bson:"email" json:"email"`
	InvitedBy primitive.ObjectID `bson:"invited_by" json:"invitedBy"`
	Token     string             `bson:"token" json:"-"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expiresAt"`
}
