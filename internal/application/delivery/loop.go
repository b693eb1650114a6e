// Package delivery runs the per-connection loop that drains a device's
// undelivered messages over its live connection.
//
// Failure policy: a message is marked delivered only after its own transmit
// succeeded. A transmit error is terminal for the connection; whatever was
// not transmitted stays undelivered and re-surfaces on the next connection.
// Storage errors are transient — the loop logs and retries on the next tick.
package delivery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leanderkretschmer/lotify/internal/domain"
)

// Payload is one delivered message as seen by the connection.
type Payload struct {
	Header  string  `json:"header"`
	Content string  `json:"content"`
	BlobID  *string `json:"blob_id"`
}

// Sink transmits one payload over a live connection.
type Sink interface {
	Send(ctx context.Context, p Payload) error
}

type deviceStore interface {
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error)
}

type messageStore interface {
	ListUndelivered(ctx context.Context, deviceID string) ([]domain.Message, error)
	MarkDelivered(ctx context.Context, messageID string) error
}

// Loop drains undelivered messages for one public key on a fixed cadence.
type Loop struct {
	devices  deviceStore
	messages messageStore
	tick     time.Duration
}

func NewLoop(devices deviceStore, messages messageStore, tick time.Duration) *Loop {
	return &Loop{devices: devices, messages: messages, tick: tick}
}

// Run delivers until ctx is cancelled or a transmit fails. The public key is
// re-resolved every tick; an unregistered key just means there is nothing to
// deliver yet.
func (l *Loop) Run(ctx context.Context, publicKey string, sink Sink) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		if err := l.deliverPending(ctx, publicKey, sink); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// deliverPending performs one tick. Returns a non-nil error only for
// terminal conditions (transmit failure, cancellation).
func (l *Loop) deliverPending(ctx context.Context, publicKey string, sink Sink) error {
	d, err := l.devices.GetByPublicKey(ctx, publicKey)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("delivery: device lookup failed", "public_key", publicKey, "err", err)
		}
		return nil
	}

	msgs, err := l.messages.ListUndelivered(ctx, d.DeviceID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("delivery: undelivered query failed", "device_id", d.DeviceID, "err", err)
		return nil
	}

	for _, m := range msgs {
		if err := sink.Send(ctx, Payload{Header: m.Header, Content: m.Content, BlobID: m.BlobID}); err != nil {
			return err
		}
		if err := l.messages.MarkDelivered(ctx, m.MessageID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The message was transmitted but is still flagged undelivered;
			// it will be retransmitted next tick rather than lost.
			slog.Warn("delivery: mark delivered failed", "message_id", m.MessageID, "err", err)
			return nil
		}
	}
	return nil
}
