package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket. It maintains
// a single connection, re-establishing it and replaying active
// subscriptions after a drop.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps client-side subscription keys to delivery channels and
	// their filters (for resubscription after reconnect).
	subs   map[uint64]*wsSubscription
	subsMu sync.RWMutex

	// serverIDs maps server subscription IDs to client keys.
	serverIDs   map[int64]uint64
	serverIDsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

type wsSubscription struct {
	filter LogsFilter
	ch     chan LogNotification
}

// NewWSClient creates a WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint:  endpoint,
		config:    cfg,
		subs:      make(map[uint64]*wsSubscription),
		serverIDs: make(map[int64]uint64),
		done:      make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

func (c *WSClientImpl) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// SubscribeLogs subscribes to logs matching the filter.
func (c *WSClientImpl) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	key := c.requestID.Add(1)
	sub := &wsSubscription{
		filter: filter,
		ch:     make(chan LogNotification, 256),
	}

	c.subsMu.Lock()
	c.subs[key] = sub
	c.subsMu.Unlock()

	if err := c.sendSubscribe(key, filter); err != nil {
		c.subsMu.Lock()
		delete(c.subs, key)
		c.subsMu.Unlock()
		return nil, err
	}

	return sub.ch, nil
}

// sendSubscribe issues a logsSubscribe request. The request ID doubles as
// the client subscription key so the ack can be matched in the read loop.
func (c *WSClientImpl) sendSubscribe(key uint64, filter LogsFilter) error {
	params := []interface{}{
		map[string]interface{}{"mentions": filter.Mentions},
		map[string]interface{}{"commitment": "confirmed"},
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      key,
		Method:  "logsSubscribe",
		Params:  params,
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(req)
}

// wsMessage covers subscription acks and notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Logs      []string    `json:"logs"`
				Err       interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			c.reconnect()
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.reconnect()
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method == "logsNotification" && msg.Params != nil:
			c.dispatch(msg)
		case msg.ID != 0 && len(msg.Result) > 0:
			// Subscription ack: result is the server subscription ID
			var serverID int64
			if err := json.Unmarshal(msg.Result, &serverID); err == nil {
				c.serverIDsMu.Lock()
				c.serverIDs[serverID] = msg.ID
				c.serverIDsMu.Unlock()
			}
		}
	}
}

func (c *WSClientImpl) dispatch(msg wsMessage) {
	c.serverIDsMu.Lock()
	key, ok := c.serverIDs[msg.Params.Subscription]
	c.serverIDsMu.Unlock()
	if !ok {
		return
	}

	c.subsMu.RLock()
	sub, ok := c.subs[key]
	c.subsMu.RUnlock()
	if !ok {
		return
	}

	n := LogNotification{
		Signature: msg.Params.Result.Value.Signature,
		Slot:      msg.Params.Result.Context.Slot,
		Logs:      msg.Params.Result.Value.Logs,
		Err:       msg.Params.Result.Value.Err,
	}

	select {
	case sub.ch <- n:
	default:
		// Drop when the consumer lags; live discovery tolerates gaps
		// because batch fetch backfills by signature.
	}
}

// reconnect re-establishes the connection with backoff and replays all
// active subscriptions.
func (c *WSClientImpl) reconnect() {
	delay := c.config.ReconnectDelay

	for {
		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		if err := c.connect(context.Background()); err != nil {
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			continue
		}

		// Stale server IDs die with the old connection
		c.serverIDsMu.Lock()
		c.serverIDs = make(map[int64]uint64)
		c.serverIDsMu.Unlock()

		c.subsMu.RLock()
		for key, sub := range c.subs {
			_ = c.sendSubscribe(key, sub.filter)
		}
		c.subsMu.RUnlock()
		return
	}
}

func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Close closes the connection and all subscription channels.
func (c *WSClientImpl) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.config.WriteTimeout))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		close(sub.ch)
	}
	c.subs = make(map[uint64]*wsSubscription)
	c.subsMu.Unlock()

	return nil
}

var _ WSClient = (*WSClientImpl)(nil)
