package realtime

import (
	"errors"
	"sync"
)

var (
	ErrBufferFull = errors.New("connection buffer full")
	ErrClosed     = errors.New("connection closed")
)

// Stream is a Conn backed by a bounded outbound buffer drained by the
// transport's writer loop. A full buffer fails the send instead of blocking
// the sender.
type Stream struct {
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 1
	}
	return &Stream{
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (s *Stream) Send(msg []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.out <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Messages is read by the writer loop.
func (s *Stream) Messages() <-chan []byte {
	return s.out
}

// Done is closed once the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
