package radius

import (
	"context"
	"errors"
	"fmt"
	"time"

	radlib "layeh.com/radius"
	"layeh.com/radius/rfc2865"
)

// ErrAccessDenied is returned when the RADIUS server answers anything other
// than Access-Accept.
var ErrAccessDenied = errors.New("radius access denied")

// Authenticator abstracts the external network authentication system. The
// auth workflow depends on this interface only; tests substitute it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// Client performs PAP Access-Request exchanges against a RADIUS server.
// The wire protocol, retries and attribute encoding are owned by the
// underlying library; a failed or timed out exchange is never retried here.
type Client struct {
	addr    string
	secret  []byte
	timeout time.Duration
}

var _ Authenticator = (*Client)(nil)

// NewClient creates a RADIUS client for the given server and shared secret.
func NewClient(addr, secret string, timeout time.Duration) *Client {
	return &Client{
		addr:    addr,
		secret:  []byte(secret),
		timeout: timeout,
	}
}

// Authenticate sends a single Access-Request and waits for the verdict.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	packet := radlib.New(radlib.CodeAccessRequest, c.secret)
	if err := rfc2865.UserName_SetString(packet, username); err != nil {
		return fmt.Errorf("radius set username: %w", err)
	}
	if err := rfc2865.UserPassword_SetString(packet, password); err != nil {
		return fmt.Errorf("radius set password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := radlib.Exchange(ctx, packet, c.addr)
	if err != nil {
		return fmt.Errorf("radius exchange: %w", err)
	}
	if response.Code != radlib.CodeAccessAccept {
		return ErrAccessDenied
	}
	return nil
}
