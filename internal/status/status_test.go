package status

import "testing"

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{Queued, Sent},
		{Sent, Acknowledged},
		{Sent, Failed},
		{Failed, Queued},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if err := Check(tt.from, tt.to); err != nil {
				t.Errorf("Check(%s -> %s) error = %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{Queued, Acknowledged}, // must pass through sent
		{Queued, Failed},
		{Sent, Queued},
		{Acknowledged, Sent}, // no regression out of acknowledged
		{Acknowledged, Queued},
		{Acknowledged, Failed},
		{Failed, Sent}, // failed retries via the queue, not directly
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if err := Check(tt.from, tt.to); err == nil {
				t.Errorf("Check(%s -> %s) should fail", tt.from, tt.to)
			}
		})
	}
}

// TestOfflineSendLifecycle walks the full path of a message composed while
// offline: queued -> sent -> acknowledged.
func TestOfflineSendLifecycle(t *testing.T) {
	cur := Queued
	for _, next := range []Status{Sent, Acknowledged} {
		if err := Check(cur, next); err != nil {
			t.Fatalf("step %s -> %s: %v", cur, next, err)
		}
		cur = next
	}
	if cur != Acknowledged {
		t.Errorf("final status = %s, want acknowledged", cur)
	}
}

// TestFailedDirectSendRejoinsQueue walks the path of a direct online send
// that errors and is retried through the replay queue:
// sent -> failed -> queued -> sent -> acknowledged.
func TestFailedDirectSendRejoinsQueue(t *testing.T) {
	cur := Sent
	for _, next := range []Status{Failed, Queued, Sent, Acknowledged} {
		if err := Check(cur, next); err != nil {
			t.Fatalf("step %s -> %s: %v", cur, next, err)
		}
		cur = next
	}
}

func TestValid(t *testing.T) {
	for _, s := range []Status{Queued, Sent, Acknowledged, Failed} {
		if !Valid(s) {
			t.Errorf("Valid(%s) = false", s)
		}
	}
	if Valid("delivered") {
		t.Error("Valid(delivered) = true for unknown status")
	}
}
