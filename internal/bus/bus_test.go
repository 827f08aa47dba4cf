package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("connectivity.", 10)
	defer unsub()

	b.Publish(Event{Kind: "connectivity.online", Timestamp: time.Now(), Payload: "test"})

	select {
	case evt := <-ch:
		if evt.Kind != "connectivity.online" {
			t.Errorf("got kind %q, want connectivity.online", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("download.", 10)
	defer unsub()

	b.Publish(Event{Kind: "message.queued"})
	b.Publish(Event{Kind: "download.progress"})

	select {
	case evt := <-ch:
		if evt.Kind != "download.progress" {
			t.Errorf("got kind %q, want download.progress", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The message event must not have been delivered to this subscriber.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("message.", 10)
	unsub()

	b.Publish(Event{Kind: "message.queued"})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("download.", 1)
	defer unsub()

	b.Publish(Event{Kind: "download.progress"})
	// Buffer is full; this one is dropped rather than blocking.
	b.Publish(Event{Kind: "download.completed"})

	evt := <-ch
	if evt.Kind != "download.progress" {
		t.Errorf("got %q, want download.progress", evt.Kind)
	}
}
