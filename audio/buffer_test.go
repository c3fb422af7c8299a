package audio

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBuffer(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuffer(1024)

	n, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 1024)
	n, err = b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	require.NoError(t, b.Close())

	n, err = b.Read(buf)
	require.Equal(t, io.EOF, err)
	require.Equal(t, 0, n)
}

func TestBufferBlockingRead(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuffer(1024)
	go func() {
		<-time.After(20 * time.Millisecond)
		_, _ = b.Write([]byte("late"))
	}()

	buf := make([]byte, 16)
	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "late", string(buf[:n]))
}

func TestBufferReadAvailable(t *testing.T) {
	b := NewBuffer(1024)

	buf := make([]byte, 16)
	require.Equal(t, 0, b.ReadAvailable(buf))

	_, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, b.ReadAvailable(buf))
	require.Equal(t, "abc", string(buf[:3]))
}

func TestBufferOverflowDrops(t *testing.T) {
	b := NewBuffer(4)

	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	// only what fits is kept
	require.Equal(t, 4, b.Len())

	buf := make([]byte, 16)
	require.Equal(t, 4, b.ReadAvailable(buf))
	require.Equal(t, "abcd", string(buf[:4]))
}
