package livekit

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintRoundTrip(t *testing.T) {
	minter := &TokenMinter{APIKey: "api-key", APISecret: "api-secret", TTL: time.Hour}
	signed, err := minter.Mint("fam1:kitchen", "user-1", "Ada")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected method %v", tok.Method)
		}
		return []byte("api-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !token.Valid {
		t.Fatal("token invalid")
	}
	if claims.Issuer != "api-key" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Name != "Ada" {
		t.Fatalf("name = %q", claims.Name)
	}
	if claims.Video.Room != "fam1:kitchen" || !claims.Video.RoomJoin {
		t.Fatalf("video grant = %+v", claims.Video)
	}
	if !claims.Video.CanPublish || !claims.Video.CanSubscribe {
		t.Fatalf("publish/subscribe not granted: %+v", claims.Video)
	}
	if time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Fatalf("expiry beyond TTL: %v", claims.ExpiresAt)
	}
}

func TestMintRequiresCredentials(t *testing.T) {
	minter := &TokenMinter{TTL: time.Hour}
	if _, err := minter.Mint("room", "id", "name"); err == nil {
		t.Fatal("minted without credentials")
	}
}

func TestMemoryRoomStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()

	if err := store.Add(ctx, Room{Name: "kitchen", FamilyID: "f1", CreatedBy: "u1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, Room{Name: "garden", FamilyID: "f1", CreatedBy: "u2", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, Room{Name: "kitchen", FamilyID: "f2", CreatedBy: "u3", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rooms, err := store.ListByFamily(ctx, "f1")
	if err != nil {
		t.Fatalf("ListByFamily: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("f1 has %d rooms, want 2", len(rooms))
	}

	if err := store.Remove(ctx, "f1", "kitchen"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	rooms, _ = store.ListByFamily(ctx, "f1")
	if len(rooms) != 1 || rooms[0].Name != "garden" {
		t.Fatalf("after remove: %+v", rooms)
	}

	// f2's identically named room is untouched
	rooms, _ = store.ListByFamily(ctx, "f2")
	if len(rooms) != 1 {
		t.Fatalf("f2 rooms gone: %+v", rooms)
	}
}
