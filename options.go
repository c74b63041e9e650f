package pinevoice

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the access token and user id explicitly, bypassing
// the environment fallback.
func WithCredentials(accessToken, userID string) Option {
	return func(c *Client) {
		c.accessToken = accessToken
		c.userID = userID
	}
}

// WithGatewayURL overrides the gateway base URL.
func WithGatewayURL(gatewayURL string) Option {
	return func(c *Client) {
		c.gatewayURL = gatewayURL
	}
}

// WithTimeout sets the timeout for create and status requests. It does not
// apply to the event stream, which is bounded by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client for create and status requests.
// A client set here takes precedence over [WithTimeout].
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStreamHTTPClient sets a custom HTTP client for the event stream.
// The stream client should carry no overall timeout: the connection stays
// open for the duration of a call.
func WithStreamHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.streamClient = httpClient
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}
