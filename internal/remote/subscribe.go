package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"clockin/internal/domain"
	"clockin/internal/logging"
)

// Subscribe opens the live feed of entries created for owner. The channel
// closes when ctx ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context, owner string) (<-chan *domain.TimeEntry, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = u.Path + entriesPath + "/ws"
	u.RawQuery = url.Values{"email": {owner}}.Encode()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: "websocket handshake failed"}
		}
		return nil, err
	}

	entries := make(chan *domain.TimeEntry)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(entries)
		defer close(done)
		defer conn.Close()
		for {
			var entry domain.TimeEntry
			if err := conn.ReadJSON(&entry); err != nil {
				if ctx.Err() == nil {
					logging.Debugf("remote: feed for %s closed: %v\n", owner, err)
				}
				return
			}
			select {
			case entries <- &entry:
			case <-ctx.Done():
				return
			}
		}
	}()
	return entries, nil
}
