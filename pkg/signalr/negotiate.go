package signalr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

type transport struct {
	Transport       string   `json:"transport"`
	TransferFormats []string `json:"transferFormats"`
}

type negotiateResponse struct {
	ConnectionID        string      `json:"connectionId"`
	ConnectionToken     string      `json:"connectionToken"`
	NegotiateVersion    int         `json:"negotiateVersion"`
	AvailableTransports []transport `json:"availableTransports"`
	URL                 string      `json:"url"`
	AccessToken         string      `json:"accessToken"`
	Error               string      `json:"error"`
}

// connectionParams is what a successful negotiation resolves to.
type connectionParams struct {
	hubURL string
	id     string
	token  string
}

// negotiate follows redirects until the server hands out a connection, and
// returns the hub URL and bearer token to dial with.
func (d *Dialer) negotiate(ctx context.Context, hubURL, token string) (connectionParams, error) {
	for range maxNegotiateRedirects {
		resp, err := d.negotiateOnce(ctx, hubURL, token)
		if err != nil {
			return connectionParams{}, err
		}

		if resp.URL != "" {
			hubURL = resp.URL
			if resp.AccessToken != "" {
				token = resp.AccessToken
			}
			continue
		}

		if !offersWebSockets(resp.AvailableTransports) {
			return connectionParams{}, ErrNoWebSockets
		}

		id := resp.ConnectionToken
		if resp.NegotiateVersion == 0 || id == "" {
			id = resp.ConnectionID
		}
		return connectionParams{hubURL: hubURL, id: id, token: token}, nil
	}
	return connectionParams{}, ErrTooManyRedirects
}

func (d *Dialer) negotiateOnce(ctx context.Context, hubURL, token string) (negotiateResponse, error) {
	target, err := negotiateURL(hubURL)
	if err != nil {
		return negotiateResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("%w: %w", ErrNegotiate, err)
	}
	for k, vs := range d.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("%w: %w", ErrNegotiate, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxMessageSize))
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("%w: reading body: %w", ErrNegotiate, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return negotiateResponse{}, fmt.Errorf("%w: unexpected status %d", ErrNegotiate, resp.StatusCode)
	}

	var out negotiateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return negotiateResponse{}, fmt.Errorf("%w: decoding body: %w", ErrNegotiate, err)
	}
	if out.Error != "" {
		return negotiateResponse{}, fmt.Errorf("%w: %s", ErrNegotiate, out.Error)
	}
	return out, nil
}

func offersWebSockets(ts []transport) bool {
	for _, t := range ts {
		if strings.EqualFold(t.Transport, "WebSockets") {
			return true
		}
	}
	return false
}

// negotiateURL appends /negotiate to the hub path, keeping any query.
func negotiateURL(hubURL string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, hubURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/negotiate"
	q := u.Query()
	q.Set("negotiateVersion", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// websocketURL switches the scheme to ws/wss and adds the connection id.
func websocketURL(hubURL, id string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, hubURL)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if id != "" {
		q := u.Query()
		q.Set("id", id)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
