// Package events publishes appointment lifecycle changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"appointment-booking-api/internal/model"
)

const SubjectPrefix = "appointments."

type Publisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

// Nop drops every event. Used when NATS_URL is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) error { return nil }

type NATS struct {
	conn *nats.Conn
}

// Connect dials url with unlimited reconnects.
func Connect(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("appointment-booking-api"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("nats disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{conn: nc}, nil
}

func Subject(t model.EventType) string { return SubjectPrefix + string(t) }

func (n *NATS) Publish(ctx context.Context, ev model.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.conn.Publish(Subject(ev.Type), b)
}

func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Drain()
	}
}
