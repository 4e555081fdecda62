// Package aura implements a client for the Neo4j Aura instance API:
// authentication, instance info lookups and pause/resume state changes.
package aura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/dfgitn4j/auractl/internal/models"
	"github.com/dfgitn4j/auractl/pkg/config"
)

// Client struct for the Aura instance API
type Client struct {
	baseURL    string // instance endpoint, no trailing slash
	httpClient *http.Client
}

// NewClient creates a new Client authenticating with the OAuth2
// client-credentials grant against the configured token endpoint.
// Tokens are fetched and refreshed lazily by the underlying transport.
func NewClient(ctx context.Context, cfg *config.Config) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.APIBase, "/"),
		httpClient: cc.Client(ctx),
	}
}

// InstanceIDFromURL extracts the instance id from a connection URI.
// The id is the host label before the first dot, e.g. '2bxxxxxx' in
// neo4j+s://2bxxxxxx.databases.neo4j.io
func InstanceIDFromURL(connectionURL string) (string, error) {
	u, err := url.Parse(connectionURL)
	if err != nil {
		return "", fmt.Errorf("invalid connection URL %q: %w", connectionURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("connection URL %q has no host", connectionURL)
	}

	id, _, found := strings.Cut(host, ".")
	if !found || id == "" {
		return "", fmt.Errorf("cannot derive instance id from connection URL %q", connectionURL)
	}

	return id, nil
}

// apiError is one entry of the errors array the Aura API returns on
// non-2xx responses.
type apiError struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// GetInstance fetches the full info for a single instance.
func (c *Client) GetInstance(ctx context.Context, id string) (*models.InstanceInfo, error) {
	var envelope struct {
		Data models.InstanceInfo `json:"data"`
	}

	if err := c.get(ctx, c.baseURL+"/"+id, &envelope); err != nil {
		return nil, fmt.Errorf("error querying instance %s: %w", id, err)
	}

	envelope.Data.InfoUpdated = time.Now()
	return &envelope.Data, nil
}

// RefreshStatus re-fetches the instance and updates Status and
// InfoUpdated in place, so info always reflects the most recent poll.
func (c *Client) RefreshStatus(ctx context.Context, info *models.InstanceInfo) error {
	var envelope struct {
		Data models.InstanceInfo `json:"data"`
	}

	if err := c.get(ctx, c.baseURL+"/"+info.ID, &envelope); err != nil {
		return fmt.Errorf("error refreshing status of instance %s: %w", info.ID, err)
	}

	info.Status = envelope.Data.Status
	info.InfoUpdated = time.Now()
	return nil
}

// ListInstances returns summary rows for all instances the credentials
// can see. The list endpoint returns fewer fields than GetInstance.
func (c *Client) ListInstances(ctx context.Context) ([]models.InstanceSummary, error) {
	var envelope struct {
		Data []models.InstanceSummary `json:"data"`
	}

	if err := c.get(ctx, c.baseURL, &envelope); err != nil {
		return nil, fmt.Errorf("error listing instances: %w", err)
	}

	return envelope.Data, nil
}

// PostAction issues a lifecycle action (pause or resume) for an instance.
// The API responds before the transition completes; callers poll for it.
func (c *Client) PostAction(ctx context.Context, id string, action string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+id+"/"+action, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error requesting %s of instance %s: %w", action, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s of instance %s failed: %s", action, id, readAPIError(resp))
	}

	return nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", readAPIError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

// readAPIError renders a non-2xx response into one line, preferring the
// messages from the API's errors array over the raw body.
func readAPIError(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var envelope struct {
		Errors []apiError `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Sprintf("%s: %s", resp.Status, strings.Join(messages, "; "))
	}

	return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
}
