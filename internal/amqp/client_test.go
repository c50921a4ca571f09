package amqp

import (
	"context"
	"errors"
	"testing"

	"centavo/internal/log"
)

func TestTransactionEventJSON(t *testing.T) {
	ev := NewTransactionEvent(TransactionCreated, "tx-1", "user-1")
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Kind != TransactionCreated || got.TransactionID != "tx-1" || got.UserID != "user-1" {
		t.Fatalf("unexpected event %+v", got)
	}
	if !got.Timestamp.Equal(ev.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, ev.Timestamp)
	}
}

func TestTransactionEventFromJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"kind":`},
		{"unknown kind", `{"kind":"transaction.exploded","transaction_id":"x"}`},
		{"missing id", `{"kind":"transaction.created"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TransactionEventFromJSON([]byte(tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	c := &Client{logger: log.Discard()}
	valid, _ := NewTransactionEvent(TransactionDeleted, "tx-9", "u").ToJSON()

	tests := []struct {
		name    string
		body    []byte
		handler EventHandler
		want    ackAction
	}{
		{
			name:    "handled",
			body:    valid,
			handler: func(context.Context, TransactionEvent) error { return nil },
			want:    ack,
		},
		{
			name:    "handler failure requeues",
			body:    valid,
			handler: func(context.Context, TransactionEvent) error { return errors.New("sheets down") },
			want:    requeue,
		},
		{
			name: "malformed is dropped",
			body: []byte("garbage"),
			handler: func(context.Context, TransactionEvent) error {
				t.Fatal("handler must not run")
				return nil
			},
			want: drop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.dispatch(context.Background(), tt.body, tt.handler); got != tt.want {
				t.Fatalf("dispatch = %v, want %v", got, tt.want)
			}
		})
	}
}
