package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	platformgrpc "github.com/louisbranch/livedraft/internal/platform/grpc"
	"github.com/louisbranch/livedraft/internal/platform/telemetry/metrics"
	"github.com/louisbranch/livedraft/internal/platform/timeouts"
	"github.com/louisbranch/livedraft/internal/protocol"
	"golang.org/x/net/websocket"
)

const (
	defaultOrigin = "http://localhost/"

	maxDecodeErrorsPerConn = 3
)

// ErrNotConnected is returned when sending while no room connection is open.
var ErrNotConnected = errors.New("not connected to a room")

var errConnectionClosed = errors.New("room closed the connection")

// ClientConfig configures the room connection.
type ClientConfig struct {
	ServerURL    string
	Origin       string
	RoomID       string
	Username     string
	Location     string
	DialTimeout  time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// Health reports SERVING while the client is in a room. Optional.
	Health *platformgrpc.HealthServer
}

// Client keeps one websocket connection to the room server open, re-dialing
// and re-joining after every drop.
type Client struct {
	cfg ClientConfig

	mu   sync.Mutex
	peer *wsPeer
}

// NewClient validates cfg and fills in defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	if cfg.ServerURL == "" {
		return nil, errors.New("server url is required")
	}
	parsed, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("server url scheme must be ws or wss, got %q", parsed.Scheme)
	}
	cfg.RoomID = strings.TrimSpace(cfg.RoomID)
	if cfg.RoomID == "" {
		return nil, errors.New("room id is required")
	}
	if strings.TrimSpace(cfg.Origin) == "" {
		cfg.Origin = defaultOrigin
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = timeouts.Dial
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = timeouts.ReconnectMin
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = max(timeouts.ReconnectMax, cfg.ReconnectMin)
	}
	return &Client{cfg: cfg}, nil
}

// Run connects, joins the room and forwards decoded events until ctx ends.
// Dropped connections are re-dialed with capped exponential backoff. Run
// closes events when it returns.
func (c *Client) Run(ctx context.Context, events chan<- protocol.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if events == nil {
		return errors.New("events channel is required")
	}
	defer close(events)

	delay := c.cfg.ReconnectMin
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			metrics.ReconnectsTotal.Inc()
		}
		joined, err := c.connectAndServe(ctx, events)
		c.cfg.Health.SetServing(false)
		if ctx.Err() != nil {
			return nil
		}
		if joined {
			delay = c.cfg.ReconnectMin
		}
		log.Printf("client: room connection lost: %v; retrying in %s", err, delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, c.cfg.ReconnectMax)
	}
}

// Send writes one command on the current connection.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) error {
	peer := c.currentPeer()
	if peer == nil {
		return ErrNotConnected
	}
	return peer.send(ctx, cmd)
}

func (c *Client) connectAndServe(ctx context.Context, events chan<- protocol.Event) (bool, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = conn.Close()
	}()
	// Unblocks the read below when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	peer := newWSPeer(conn)
	c.setPeer(peer)
	defer c.clearPeer(peer)

	join := []protocol.Command{
		protocol.JoinLobby{Username: c.cfg.Username, Location: c.cfg.Location},
		protocol.JoinRoom{RoomID: c.cfg.RoomID},
	}
	for _, cmd := range join {
		if err := peer.send(ctx, cmd); err != nil {
			return false, err
		}
	}

	joined := false
	decodeErrors := 0
	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if errors.Is(err, io.EOF) {
				return joined, errConnectionClosed
			}
			return joined, fmt.Errorf("read frame: %w", err)
		}

		event, err := decodeEvent(data)
		if err != nil {
			code := protocol.CodeOf(err)
			metrics.FramesRejectedTotal.WithLabelValues(string(code)).Inc()
			log.Printf("client: skipping frame code=%s: %v", code, err)
			if code == protocol.CodeUnknownType {
				continue
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrorsPerConn {
				return joined, fmt.Errorf("too many undecodable frames: %w", err)
			}
			continue
		}
		decodeErrors = 0

		if _, ok := event.(protocol.RoomJoined); ok {
			joined = true
			c.cfg.Health.SetServing(true)
		}
		select {
		case events <- event:
		case <-ctx.Done():
			return joined, ctx.Err()
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	wsConfig, err := websocket.NewConfig(c.cfg.ServerURL, c.cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()
	conn, err := wsConfig.DialContext(dialCtx)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.cfg.ServerURL, err)
	}
	return conn, nil
}

func (c *Client) currentPeer() *wsPeer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

func (c *Client) setPeer(peer *wsPeer) {
	c.mu.Lock()
	c.peer = peer
	c.mu.Unlock()
}

func (c *Client) clearPeer(peer *wsPeer) {
	c.mu.Lock()
	if c.peer == peer {
		c.peer = nil
	}
	c.mu.Unlock()
}

func decodeEvent(data []byte) (protocol.Event, error) {
	frame, err := protocol.ParseFrame(data)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeEvent(frame)
}

// wsPeer serializes writes to one connection.
type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) send(ctx context.Context, cmd protocol.Command) error {
	frame, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	deadline := time.Now().Add(timeouts.Write)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = p.conn.SetWriteDeadline(deadline)
	if err := p.encoder.Encode(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", frame.Type, err)
	}
	return nil
}
