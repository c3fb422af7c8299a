package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/duplex"
)

type fakeConn struct {
	writeErr  error
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
}

func (c *fakeConn) WriteMessage(mt int, data []byte) error {
	return c.writeErr
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

type fakeDevices struct {
	closed bool
}

func (d *fakeDevices) Close() { d.closed = true }

func TestStreamSessionReleasesDevicesOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	conn := newFakeConn()
	conn.writeErr = errors.New("broken pipe")
	playback := audio.NewBuffer(1024)
	streamer := duplex.New(conn, playback)
	streamer.Capture([]byte("chunk"))

	devices := &fakeDevices{}
	err := streamSession(context.Background(), streamer, playback, devices)
	require.ErrorContains(t, err, "broken pipe")

	// the devices are released even though the session failed
	require.True(t, devices.closed)
}

func TestStreamSessionReleasesDevicesOnCleanClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	conn := newFakeConn()
	conn.Close()
	playback := audio.NewBuffer(1024)
	streamer := duplex.New(conn, playback)

	devices := &fakeDevices{}
	require.NoError(t, streamSession(context.Background(), streamer, playback, devices))
	require.True(t, devices.closed)
}
