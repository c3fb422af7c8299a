package audio

import (
	"io"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// Buffer is a ring-buffer backed byte stream between a network
// receiver and an audio device. Read blocks until data arrives or the
// buffer is closed.
type Buffer struct {
	b      *ringbuffer.RingBuffer
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func NewBuffer(size int) *Buffer {
	b := &Buffer{
		b: ringbuffer.New(size),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Read blocks until at least one byte is available, then returns what
// is there, up to len(p). After Close it drains the remainder and then
// returns io.EOF.
func (buf *Buffer) Read(p []byte) (int, error) {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	for buf.b.Length() == 0 && !buf.closed {
		buf.cond.Wait()
	}

	if buf.closed && buf.b.Length() == 0 {
		return 0, io.EOF
	}

	n := min(len(p), buf.b.Length())
	if n > 0 {
		_, _ = buf.b.Read(p[:n])
	}

	return n, nil
}

// ReadAvailable fills p with whatever is buffered without blocking and
// returns the number of bytes copied. Safe to call from a real-time
// device callback.
func (buf *Buffer) ReadAvailable(p []byte) int {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	n := min(len(p), buf.b.Length())
	if n > 0 {
		_, _ = buf.b.Read(p[:n])
	}
	return n
}

// Write buffers p for the device. When the buffer is full the excess
// is dropped; a full buffer means the device is seconds behind and
// stalling the network reader would not help.
func (buf *Buffer) Write(p []byte) (int, error) {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	if buf.closed {
		return 0, io.ErrClosedPipe
	}

	free := buf.b.Free()
	n := min(len(p), free)
	if n > 0 {
		_, _ = buf.b.Write(p[:n])
		buf.cond.Broadcast()
	}
	return len(p), nil
}

// Len returns the number of buffered bytes.
func (buf *Buffer) Len() int {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	return buf.b.Length()
}

func (buf *Buffer) Close() error {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	buf.closed = true
	buf.cond.Broadcast()
	return nil
}
