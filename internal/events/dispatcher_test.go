package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var calls []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	err := dispatcher.Publish(context.Background(), New(EventTicketCreated, 9, Actor{UserID: 1}, nil))
	if err == nil {
		t.Error("expected the handler error to be reported")
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v", calls)
	}
}

func TestNewStampsEvent(t *testing.T) {
	a := New(EventSessionStarted, 0, Actor{UserID: 3}, SessionPayload{Name: "Asha"})
	b := New(EventSessionStarted, 0, Actor{UserID: 3}, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event ids should be unique, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
