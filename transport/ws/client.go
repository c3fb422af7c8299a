package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

func websocketUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		// browser clients connect from arbitrary origins
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

type DialConfig struct {
	URL            string
	ConnectTimeout time.Duration
	Headers        http.Header
}

func (d *DialConfig) Defaults() {
	if d.ConnectTimeout == 0 {
		d.ConnectTimeout = 10 * time.Second
	}
}

// Dial connects to a WebSocket endpoint and returns the raw
// connection for a client-side streamer.
func Dial(ctx context.Context, config DialConfig) (*websocket.Conn, error) {
	config.Defaults()

	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	for k, v := range config.Headers {
		for _, vv := range v {
			header.Add(k, vv)
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), header)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return conn, nil
}
