package bus

import (
	"context"
	"testing"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func TestMemoryBus(t *testing.T) {
	b := NewMemoryBus()
	var forwarded []Event
	if err := b.StartForwarder(context.Background(), func(ev Event) { forwarded = append(forwarded, ev) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	if err := b.Publish(context.Background(), Event{Type: EventPlantActivated, UserID: "u1", PlantIDs: []string{"p1"}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	evs := b.Events()
	if len(evs) != 1 || evs[0].Type != EventPlantActivated || evs[0].At.IsZero() {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if len(forwarded) != 1 || forwarded[0].PlantIDs[0] != "p1" {
		t.Fatalf("forwarder not called: %+v", forwarded)
	}
}

func TestNewRedisBus_RequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(RedisConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error without address")
	}
	if _, err := NewRedisBus(RedisConfig{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("expected error without logger")
	}
}
