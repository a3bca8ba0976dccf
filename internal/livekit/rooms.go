package livekit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Room is a breakout-room registration scoped to a family.
type Room struct {
	Name      string    `json:"name"`
	FamilyID  string    `json:"familyId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomStore is the breakout-room registry. The default implementation is
// Redis-backed so multiple instances agree on the room list; the in-memory
// one backs tests.
type RoomStore interface {
	Add(ctx context.Context, room Room) error
	ListByFamily(ctx context.Context, familyID string) ([]Room, error)
	Remove(ctx context.Context, familyID, name string) error
}

const roomTTL = 24 * time.Hour

type RedisRoomStore struct {
	client *redis.Client
}

func NewRedisRoomStore(client *redis.Client) *RedisRoomStore {
	return &RedisRoomStore{client: client}
}

func roomsKey(familyID string) string {
	return "video_rooms:" + familyID
}

func (s *RedisRoomStore) Add(ctx context.Context, room Room) error {
	b, err := json.Marshal(room)
	if err != nil {
		return err
	}
	key := roomsKey(room.FamilyID)
	if err := s.client.HSet(ctx, key, room.Name, b).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, roomTTL).Err()
}

func (s *RedisRoomStore) ListByFamily(ctx context.Context, familyID string) ([]Room, error) {
	vals, err := s.client.HGetAll(ctx, roomsKey(familyID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Room, 0, len(vals))
	for _, v := range vals {
		var r Room
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RedisRoomStore) Remove(ctx context.Context, familyID, name string) error {
	return s.client.HDel(ctx, roomsKey(familyID), name).Err()
}

type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[string]map[string]Room
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]map[string]Room)}
}

func (s *MemoryRoomStore) Add(ctx context.Context, room Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[room.FamilyID] == nil {
		s.rooms[room.FamilyID] = make(map[string]Room)
	}
	s.rooms[room.FamilyID][room.Name] = room
	return nil
}

func (s *MemoryRoomStore) ListByFamily(ctx context.Context, familyID string) ([]Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Room, 0, len(s.rooms[familyID]))
	for _, r := range s.rooms[familyID] {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryRoomStore) Remove(ctx context.Context, familyID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms[familyID], name)
	return nil
}
