package ws

import (
	"encoding/json"
	"testing"
)

type fakeClient struct {
	id   string
	sent [][]byte
}

func (f *fakeClient) Send(data []byte) { f.sent = append(f.sent, data) }
func (f *fakeClient) UserID() string   { return f.id }

func TestBroadcastReachesRoomOnly(t *testing.T) {
	h := NewHub()
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	other := &fakeClient{id: "c"}
	h.Join("fam1", a)
	h.Join("fam1", b)
	h.Join("fam2", other)

	h.Broadcast("fam1", EventNewMemory, map[string]string{"title": "Beach day"})

	for _, c := range []*fakeClient{a, b} {
		if len(c.sent) != 1 {
			t.Fatalf("client %s got %d messages, want 1", c.id, len(c.sent))
		}
		var env Envelope
		if err := json.Unmarshal(c.sent[0], &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if env.Type != EventNewMemory {
			t.Fatalf("type = %q", env.Type)
		}
		payload, ok := env.Payload.(map[string]any)
		if !ok || payload["title"] != "Beach day" {
			t.Fatalf("payload = %#v", env.Payload)
		}
	}
	if len(other.sent) != 0 {
		t.Fatalf("fam2 client received fam1 broadcast")
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := NewHub()
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	h.Join("fam1", a)
	h.Join("fam1", b)

	h.Leave("fam1", a)
	h.Broadcast("fam1", EventNewEvent, nil)

	if len(a.sent) != 0 {
		t.Fatalf("left client still receiving")
	}
	if len(b.sent) != 1 {
		t.Fatalf("remaining client got %d messages", len(b.sent))
	}
}

func TestRoomSize(t *testing.T) {
	h := NewHub()
	if h.RoomSize("fam1") != 0 {
		t.Fatal("empty hub has nonzero room")
	}
	a := &fakeClient{id: "a"}
	h.Join("fam1", a)
	if h.RoomSize("fam1") != 1 {
		t.Fatalf("size = %d", h.RoomSize("fam1"))
	}
	h.Leave("fam1", a)
	if h.RoomSize("fam1") != 0 {
		t.Fatalf("size after leave = %d", h.RoomSize("fam1"))
	}
}

func TestBroadcastUnknownRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.Broadcast("nobody-home", EventMessageReceived, "hi")
}
