package events

import "context"

// Stream is a one-shot, ordered sequence of events with a terminal error.
// A stage agent produces into it from one goroutine; the orchestrator pulls
// from Events until the channel closes, then reads Err. The channel close is
// the synchronization point, so no locking is needed around err.
type Stream struct {
	ch  chan Event
	err error
}

func NewStream(buffer int) *Stream {
	return &Stream{ch: make(chan Event, buffer)}
}

// Events is the pull side of the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Err reports the terminal error, if any. Valid once Events has been drained.
func (s *Stream) Err() error {
	return s.err
}

// Send forwards one event, giving up when ctx is cancelled. Cancellation
// therefore stops forwarding within a single event.
func (s *Stream) Send(ctx context.Context, e Event) error {
	select {
	case s.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close records the terminal error and closes the event channel. Must be
// called exactly once by the producer.
func (s *Stream) Close(err error) {
	s.err = err
	close(s.ch)
}
