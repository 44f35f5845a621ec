// Package secrets implements the signed login + token-bearing secret
// lookup described in §4.8, grounded on the teacher's getAuthHeaders in
// client.go: sign a timestamped message with the node's own signer,
// exchange it for a bearer token, use the token to fetch a secret map.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/nosana-node/worker/internal/key"
	"github.com/nosana-node/worker/internal/nerrors"
)

// loginMessagePrefix is prepended to the timestamp before signing, per
// §4.8: `sign("nosana_secret_" ‖ timestamp)`.
const loginMessagePrefix = "nosana_secret_"

// Client talks to the secrets HTTP proxy named in §6: POST /login to
// exchange a signed message for a bearer token, GET /secrets to read the
// map the token unlocks.
type Client struct {
	endpoint string
	http     *http.Client
	signer   solana.PrivateKey
	token    string
}

// New returns a secrets client bound to endpoint (`secrets-endpoint` from
// §6), authenticating as signer.
func New(endpoint string, signer solana.PrivateKey) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		signer:   signer,
	}
}

// Login signs `nosana_secret_<timestamp>` with the node's signer and
// exchanges it (plus an optional job address) for a bearer token, which
// is cached on the client for subsequent GetSecret calls.
func (c *Client) Login(ctx context.Context, job string) error {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	msg := []byte(loginMessagePrefix + timestamp)

	sig, err := key.Sign(c.signer, msg)
	if err != nil {
		return fmt.Errorf("secrets: signing login message: %w", err)
	}

	form := url.Values{}
	form.Set("address", c.signer.PublicKey().String())
	form.Set("signature", base58.Encode(sig[:]))
	form.Set("timestamp", timestamp)
	if job != "" {
		form.Set("job", job)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/login", nil)
	if err != nil {
		return fmt.Errorf("secrets: building login request: %w", err)
	}
	req.URL.RawQuery = form.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("secrets: login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("secrets: login returned status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("secrets: reading login response: %w", err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("secrets: parsing login response: %w", err)
	}

	c.token = out.Token
	return nil
}

// GetSecret fetches the full secret map via GET /secrets using the cached
// bearer token (Login must have succeeded first) and returns the value
// for key k, failing with SecretMissing{k} when absent. The error never
// carries a value for a key that was present but empty - only the
// absence case is distinguished, per §7's "never the value" rule.
func (c *Client) GetSecret(ctx context.Context, k string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/secrets", nil)
	if err != nil {
		return "", fmt.Errorf("secrets: building secrets request: %w", err)
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("secrets: secrets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("secrets: secrets endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("secrets: reading secrets response: %w", err)
	}

	var secretMap map[string]string
	if err := json.Unmarshal(body, &secretMap); err != nil {
		return "", fmt.Errorf("secrets: parsing secrets response: %w", err)
	}

	v, ok := secretMap[k]
	if !ok {
		return "", &nerrors.SecretMissing{Key: k}
	}
	return v, nil
}
