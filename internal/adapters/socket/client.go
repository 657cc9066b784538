package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/lastwatched/internal/ports"
)

// Overlay queries sit on the file manager's paint path and must answer fast.
const (
	lookupTimeout  = 1 * time.Second
	commandTimeout = 5 * time.Second
)

// Client connects to the provider host over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// IsMember asks whether path is watched. Transport failures come back as
// MembershipError with the error, so display callers can reduce either to
// "not watched".
func (c *Client) IsMember(path string) (ports.Membership, error) {
	var result IsMemberResult
	if err := c.do(MethodIsMember, PathParams{Path: path}, &result, lookupTimeout); err != nil {
		return ports.MembershipError, err
	}
	switch result.Membership {
	case ports.Member.String():
		return ports.Member, nil
	case ports.NotMember.String():
		return ports.NotMember, nil
	default:
		return ports.MembershipError, nil
	}
}

// OverlayInfo fetches the overlay icon description.
func (c *Client) OverlayInfo(bufLen int) (*ports.OverlayInfo, error) {
	var result ports.OverlayInfo
	if err := c.do(MethodOverlayInfo, OverlayInfoParams{BufLen: bufLen}, &result, lookupTimeout); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verbs lists the context-menu commands for path.
func (c *Client) Verbs(path string) ([]ports.Verb, error) {
	var result VerbsResult
	if err := c.do(MethodVerbs, PathParams{Path: path}, &result, lookupTimeout); err != nil {
		return nil, err
	}
	return result.Verbs, nil
}

// Invoke runs a context-menu verb against path.
func (c *Client) Invoke(verb, path string) error {
	return c.do(MethodInvoke, InvokeParams{Verb: verb, Path: path}, nil, commandTimeout)
}

// Property reads a boolean property for path.
func (c *Client) Property(path, key string) (bool, error) {
	var result PropertyResult
	if err := c.do(MethodProperty, PropertyParams{Path: path, Key: key}, &result, lookupTimeout); err != nil {
		return false, err
	}
	return result.Value, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result, lookupTimeout); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the provider host.
func (c *Client) Shutdown() error {
	return c.do(MethodShutdown, nil, nil, commandTimeout)
}

// Ping returns true if the provider host is reachable.
func (c *Client) Ping() bool {
	_, err := c.Health()
	return err == nil
}

// do sends one request and decodes its result into out (if non-nil).
func (c *Client) do(method string, params, out interface{}, timeout time.Duration) error {
	resp, err := c.callWithTimeout(Request{ID: "1", Method: method, Params: params}, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, &RemoteError{Code: resp.Code, Message: resp.Error}
	}
	return &resp, nil
}
