package notification

import (
	"context"
)

const defaultStreamBuffer = 16

// Sender is a blocking sink, e.g. an RPC server stream.
type Sender[T any] interface {
	Send(T) error
}

// Forward subscribes to m and pipes every broadcast value into sender until
// ctx is done or sender returns an error. Broadcasts never block on a slow
// sender: when the buffer is full the oldest pending value is dropped.
// The subscription is removed before Forward returns.
//
// onSubscribed, if set, runs once the subscription is active and before any
// broadcast value is sent, so an initial snapshot sent from it is never
// followed by a gap.
func Forward[T any](ctx context.Context, m *Manager[T], sender Sender[T], bufferSize int, onSubscribed func() error) error {
	if bufferSize <= 0 {
		bufferSize = defaultStreamBuffer
	}
	ch := make(chan T, bufferSize)

	id := m.Subscribe(func(v T) {
		for {
			select {
			case ch <- v:
				return
			default:
			}
			// Full: drop the oldest and retry
			select {
			case <-ch:
			default:
			}
		}
	})
	defer m.Unsubscribe(id)

	if onSubscribed != nil {
		if err := onSubscribed(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-ch:
			if err := sender.Send(v); err != nil {
				return err
			}
		}
	}
}
