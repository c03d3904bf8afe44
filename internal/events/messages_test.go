package events

import (
	"testing"
)

func TestLedgerEventRoundTrip(t *testing.T) {
	ev := NewLedgerEvent(EntityTransaction, ActionCreated, 42, 7)
	if ev.Timestamp.IsZero() {
		t.Fatal("event must be timestamped")
	}

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entity != EntityTransaction || got.Action != ActionCreated || got.ID != 42 || got.UserID != 7 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(ev.Timestamp) {
		t.Fatalf("timestamp mismatch: %v != %v", got.Timestamp, ev.Timestamp)
	}
}

func TestLedgerEventFromJSON_Malformed(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
