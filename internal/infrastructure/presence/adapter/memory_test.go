package adapter

import (
	"context"
	"testing"
)

func TestTrackerMultiDeviceTransitions(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	online, err := tr.IsOnline(ctx, "alice")
	if err != nil || online {
		t.Fatalf("fresh tracker: online=%v err=%v", online, err)
	}

	if err := tr.Connect(ctx, "alice", "c1"); err != nil {
		t.Fatalf("Connect c1: %v", err)
	}
	if err := tr.Connect(ctx, "alice", "c2"); err != nil {
		t.Fatalf("Connect c2: %v", err)
	}

	online, _ = tr.IsOnline(ctx, "alice")
	if !online {
		t.Fatal("alice should be online with two devices")
	}

	// first disconnect leaves one device, so the user stays online
	wentOffline, err := tr.Disconnect(ctx, "alice", "c1")
	if err != nil {
		t.Fatalf("Disconnect c1: %v", err)
	}
	if wentOffline {
		t.Fatal("user reported offline while a second device is connected")
	}
	online, _ = tr.IsOnline(ctx, "alice")
	if !online {
		t.Fatal("alice should still be online after losing one device")
	}

	wentOffline, err = tr.Disconnect(ctx, "alice", "c2")
	if err != nil {
		t.Fatalf("Disconnect c2: %v", err)
	}
	if !wentOffline {
		t.Fatal("last disconnect must report the offline transition")
	}
	online, _ = tr.IsOnline(ctx, "alice")
	if online {
		t.Fatal("alice should be offline with no devices")
	}
}

func TestTrackerBatchIsOnline(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	if err := tr.Connect(ctx, "alice", "c1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result, err := tr.BatchIsOnline(ctx, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("BatchIsOnline: %v", err)
	}
	if !result["alice"] || result["bob"] {
		t.Fatalf("unexpected presence map %v", result)
	}
}
