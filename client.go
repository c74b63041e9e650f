package pinevoice

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGatewayURL is the production voice-agent gateway.
const DefaultGatewayURL = "https://agent3-api-gateway-staging.19pine.ai"

const (
	envAccessToken = "PINE_ACCESS_TOKEN"
	envUserID      = "PINE_USER_ID"
	envGatewayURL  = "PINE_GATEWAY_URL"
)

const defaultTimeout = 30 * time.Second

// Client is the Pine Voice gateway client.
type Client struct {
	gatewayURL  string
	accessToken string
	userID      string
	userAgent   string
	timeout     time.Duration

	// httpClient serves create/status requests with a short timeout.
	// streamClient serves the long-lived event stream and carries no
	// overall timeout; stream reads are bounded by the caller's context.
	httpClient   *http.Client
	streamClient *http.Client

	logger zerolog.Logger
}

// NewClient creates a new Pine Voice client.
//
// Credentials resolve from [WithCredentials], then from the
// PINE_ACCESS_TOKEN and PINE_USER_ID environment variables; the gateway URL
// from [WithGatewayURL], then PINE_GATEWAY_URL, then [DefaultGatewayURL].
// Returns an [ErrorKindAuth] error when no credentials resolve.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent: "pine-voice-go/" + Version,
		timeout:   defaultTimeout,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.accessToken == "" {
		c.accessToken = os.Getenv(envAccessToken)
	}
	if c.userID == "" {
		c.userID = os.Getenv(envUserID)
	}
	if c.accessToken == "" || c.userID == "" {
		return nil, newError(ErrorKindAuth, "MISSING_CREDENTIALS",
			"access token and user id are required; pass WithCredentials or set "+
				envAccessToken+" and "+envUserID, 0, nil)
	}

	if c.gatewayURL == "" {
		c.gatewayURL = os.Getenv(envGatewayURL)
	}
	if c.gatewayURL == "" {
		c.gatewayURL = DefaultGatewayURL
	}
	c.gatewayURL = strings.TrimRight(c.gatewayURL, "/")

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.streamClient == nil {
		c.streamClient = &http.Client{}
	}

	return c, nil
}
