// internal/transport/client.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"remoteflow/internal/common/config"
	"remoteflow/internal/common/logger"
	"remoteflow/internal/common/metrics"
	"remoteflow/internal/models"
	"remoteflow/internal/workflow"
)

// Client performs the synchronous HTTP operations against a remote
// execution server. The client id must stay stable across probe,
// submission and completion monitoring so the server can correlate
// push events with this caller.
type Client struct {
	address    string
	clientID   string
	httpClient *http.Client
	timeouts   config.TimeoutConfig
	log        logger.Logger
}

func NewClient(address, clientID string, timeouts config.TimeoutConfig, log logger.Logger) *Client {
	return &Client{
		address:    address,
		clientID:   clientID,
		httpClient: &http.Client{},
		timeouts:   timeouts,
		log:        log,
	}
}

func (c *Client) Address() string {
	return c.address
}

func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) baseURL() string {
	return "http://" + c.address
}

// Probe checks server reachability. Any transport failure means
// unreachable; it never returns an error.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Probe)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/system_stats", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("probe", "error").Inc()
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	ok := resp.StatusCode == http.StatusOK
	metrics.TransportRequests.WithLabelValues("probe", statusLabel(ok)).Inc()
	return ok
}

// SubmitJob queues a graph for execution and returns the job handle.
func (c *Client) SubmitJob(ctx context.Context, g workflow.Graph) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Submit)
	defer cancel()

	payload, err := json.Marshal(map[string]interface{}{
		"prompt":    g,
		"client_id": c.clientID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/prompt", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("submit", "error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TransportRequests.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("submit returned status %d", resp.StatusCode)
	}

	var body struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.TransportRequests.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("submit response decode: %w", err)
	}
	if body.PromptID == "" {
		metrics.TransportRequests.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("submit response carried no prompt_id")
	}

	metrics.TransportRequests.WithLabelValues("submit", "ok").Inc()
	return body.PromptID, nil
}

// Download fetches an artifact's raw bytes. An empty folder type
// defaults to "output".
func (c *Client) Download(ctx context.Context, ref models.AssetRef) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Transfer)
	defer cancel()

	folderType := ref.Type
	if folderType == "" {
		folderType = "output"
	}

	q := url.Values{}
	q.Set("filename", ref.Filename)
	q.Set("subfolder", ref.Subfolder)
	q.Set("type", folderType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/view?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("download", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TransportRequests.WithLabelValues("download", "error").Inc()
		return nil, fmt.Errorf("download %s returned status %d", ref.Filename, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("download", "error").Inc()
		return nil, err
	}

	metrics.TransportRequests.WithLabelValues("download", "ok").Inc()
	metrics.TransportBytes.WithLabelValues("download").Add(float64(len(data)))
	return data, nil
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
