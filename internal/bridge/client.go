package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slipbar/slipbar/internal/ipc"
)

// Client is slipbarctl's side of the bridge.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the bridge at addr (host:port, no scheme).
func Dial(addr string) (*Client, error) {
	return DialURL("ws://" + addr + StreamPath)
}

// DialURL connects to a full websocket URL.
func DialURL(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reach the slipbar bridge: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Next blocks for the next status snapshot.
func (c *Client) Next() (ipc.StatusSnapshot, error) {
	var snap ipc.StatusSnapshot
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("malformed snapshot frame: %w", err)
	}
	return snap, nil
}

// Send issues a command to the running app.
func (c *Client) Send(cmd ipc.Command) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(CommandRequest{Command: string(cmd)})
}

// Close shuts the connection down cleanly.
func (c *Client) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
