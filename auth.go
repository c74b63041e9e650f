package pinevoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultAuthURL is the host serving the email verification flow.
const DefaultAuthURL = "https://www.19pine.ai"

// AuthClient obtains access credentials through the email verification flow.
// It requires no credentials itself:
//
//	auth := pinevoice.NewAuthClient()
//	token, err := auth.RequestCode(ctx, "you@example.com")
//	// ... user reads the code from their inbox ...
//	creds, err := auth.VerifyCode(ctx, "you@example.com", token, "123456")
//	client, err := pinevoice.NewClient(
//	    pinevoice.WithCredentials(creds.AccessToken, creds.UserID),
//	)
type AuthClient struct {
	authURL    string
	httpClient *http.Client
}

// AuthOption configures an AuthClient.
type AuthOption func(*AuthClient)

// WithAuthURL overrides the auth host.
func WithAuthURL(authURL string) AuthOption {
	return func(a *AuthClient) {
		a.authURL = authURL
	}
}

// WithAuthHTTPClient sets a custom HTTP client.
func WithAuthHTTPClient(httpClient *http.Client) AuthOption {
	return func(a *AuthClient) {
		a.httpClient = httpClient
	}
}

// NewAuthClient creates an auth client against [DefaultAuthURL].
func NewAuthClient(opts ...AuthOption) *AuthClient {
	a := &AuthClient{authURL: DefaultAuthURL}
	for _, opt := range opts {
		opt(a)
	}
	a.authURL = strings.TrimRight(a.authURL, "/")
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return a
}

// RequestCode asks for a verification code to be sent to email. The returned
// request token is needed by [AuthClient.VerifyCode].
func (a *AuthClient) RequestCode(ctx context.Context, email string) (string, error) {
	data, err := a.post(ctx, "/api/v2/auth/email/request",
		map[string]string{"email": email}, "AUTH_REQUEST_FAILED")
	if err != nil {
		return "", err
	}
	if data.RequestToken == "" {
		return "", newError(ErrorKindAuth, "NO_TOKEN",
			"server did not return a request token", 500, nil)
	}
	return data.RequestToken, nil
}

// VerifyCode exchanges the emailed code for access credentials.
func (a *AuthClient) VerifyCode(ctx context.Context, email, requestToken, code string) (*Credentials, error) {
	data, err := a.post(ctx, "/api/v2/auth/email/verify",
		map[string]string{"email": email, "request_token": requestToken, "code": code},
		"AUTH_VERIFY_FAILED")
	if err != nil {
		return nil, err
	}
	if data.AccessToken == "" || data.ID == "" {
		return nil, newError(ErrorKindAuth, "NO_CREDENTIALS",
			"server did not return valid credentials", 500, nil)
	}
	return &Credentials{AccessToken: data.AccessToken, UserID: data.ID}, nil
}

// authData is the "data" envelope of auth responses.
type authData struct {
	RequestToken string `json:"request_token"`
	AccessToken  string `json:"access_token"`
	ID           string `json:"id"`
}

func (a *AuthClient) post(ctx context.Context, path string, payload map[string]string, failCode string) (*authData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrorKindAuth, failCode, "failed to encode request body", 0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrorKindAuth, failCode, "failed to create request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrorKindAuth, failCode, "request failed", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrorKindAuth, failCode, "failed to read response body", 0, err)
	}

	if resp.StatusCode >= 400 {
		code := failCode
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var we wireError
		if json.Unmarshal(raw, &we) == nil {
			if we.Error.Code != "" {
				code = we.Error.Code
			}
			if we.Error.Message != "" {
				message = we.Error.Message
			}
		}
		return nil, newError(ErrorKindAuth, code, message, resp.StatusCode, nil)
	}

	var envelope struct {
		Data authData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errEmptyResponse(err)
	}
	return &envelope.Data, nil
}
