package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dmitrijs2005/sealpost/internal/token"
)

// Frame is one push from the realtime channel: "inbox.init" with the
// envelopes queued while offline, or "envelope" with a single live message.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsBase rewrites the configured http(s) base URL into its ws(s) form.
func (c *Client) wsBase() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://")
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://")
	default:
		return c.baseURL
	}
}

// Listen opens the realtime channel for the given handle and invokes
// onFrame for every push until ctx is cancelled or the connection drops.
// The channel-open token is minted with the rcpt_id claim bound in, as the
// relay requires.
func (c *Client) Listen(ctx context.Context, rcptID string, onFrame func(Frame)) error {
	compact, err := c.Mint(token.ActWSOpen, rcptID)
	if err != nil {
		return err
	}

	wsURL := c.wsBase() + "/ws/inbox?token=" + url.QueryEscape(compact) + "&email=" + url.QueryEscape(c.email)

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial realtime channel: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var frame Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if status := websocket.CloseStatus(err); status != -1 {
				return fmt.Errorf("channel closed with status %d", status)
			}
			return err
		}
		onFrame(frame)
	}
}
