package reportstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ReportEvent is the socket.io event every report is emitted under.
const ReportEvent = "report"

// DefaultConnectTimeout bounds Dial when Options.ConnectTimeout is zero.
const DefaultConnectTimeout = 15 * time.Second

// ErrNotConnected is returned by Publish once the connection is gone.
var ErrNotConnected = errors.New("report stream is not connected")

// Publisher delivers build reports somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
	Close() error
}

// Options configures Dial.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Client is a Publisher backed by a socket.io connection.
type Client struct {
	io     *socket.Socket
	logger *slog.Logger
}

var _ Publisher = (*Client)(nil)

// Dial connects to the socket.io server at opts.URL and waits until the
// connection is established, fails, times out, or ctx is cancelled.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "reportstream", "url", opts.URL)
	logger.Info("Connecting report stream...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q is not absolute", opts.URL)
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before connecting to socket.io: %w", err)
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsedURL.Path)
	// The handshake may block, so the only connect attempt is the one
	// started in the background below.
	sopts.SetAutoConnect(false)
	sopts.SetTimeout(timeout)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Report stream connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Report stream connection failed", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	go io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Client{io: io, logger: logger}, nil
	case <-ctx.Done():
		go io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		go io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Publish emits payload as a ReportEvent. The payload is sent as its JSON
// object form so the receiver sees the same field names as on disk.
func (c *Client) Publish(ctx context.Context, payload any) error {
	if !c.io.Connected() {
		return ErrNotConnected
	}
	data, err := toWire(payload)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.io.Emit(ReportEvent, data)
	c.logger.Debug("Report published", "sid", c.io.Id())
	return nil
}

// Close disconnects from the server.
func (c *Client) Close() error {
	c.logger.Info("Closing report stream", "sid", c.io.Id())
	c.io.Disconnect()
	return nil
}

// toWire round-trips payload through encoding/json so that struct tags
// decide the emitted field names.
func toWire(payload any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("report must encode to a JSON object: %w", err)
	}
	return out, nil
}
