// Package livekit mints LiveKit room access tokens. LiveKit tokens are
// standard HS256 JWTs carrying a "video" grant; no SDK is needed to sign
// them.
package livekit

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type tokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

type TokenMinter struct {
	APIKey    string
	APISecret string
	TTL       time.Duration
}

// Mint issues a join token for identity in room.
func (m *TokenMinter) Mint(room, identity, displayName string) (string, error) {
	if m.APIKey == "" || m.APISecret == "" {
		return "", errors.New("livekit credentials not configured")
	}
	now := time.Now()
	claims := tokenClaims{
		Name: displayName,
		Video: VideoGrant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.APIKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.APISecret))
}
