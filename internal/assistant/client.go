package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/sources/catalog"
	"github.com/curioapp/curio/internal/utils"
)

// Client is the single logical call the engine makes against the
// upstream chat collaborator. Implementations must normalize any
// product payloads before returning: the rest of the engine only ever
// sees canonical products.
type Client interface {
	Send(ctx context.Context, sessionID, text string) (*domain.AssistantResponse, error)
}

// wireResponse is the loosely-typed reply shape of the upstream chat
// endpoint. Products arrive raw and are normalized at this boundary.
type wireResponse struct {
	Message         string               `json:"message"`
	Action          domain.ActionKind    `json:"action"`
	Products        []catalog.RawProduct `json:"products"`
	Error           bool                 `json:"error"`
	CollectionName  string               `json:"collectionName"`
	ShowCollections bool                 `json:"showCollections"`
	ShowBookmarks   bool                 `json:"showBookmarks"`
}

type wireRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// HTTPClient talks to the upstream chat endpoint over HTTP.
type HTTPClient struct {
	endpoint   string
	client     *http.Client
	normalizer *catalog.Normalizer
	logger     logger.Logger
}

// NewHTTPClient creates a client for the given chat endpoint.
func NewHTTPClient(endpoint string, timeout time.Duration, normalizer *catalog.Normalizer, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: timeout,
			},
		},
		normalizer: normalizer,
		logger:     log,
	}
}

// Send forwards one user message and returns the normalized assistant
// response. Any network or decoding failure is a transport failure; the
// caller decides how to surface it (the store is never touched).
func (c *HTTPClient) Send(ctx context.Context, sessionID, text string) (*domain.AssistantResponse, error) {
	body, err := json.Marshal(wireRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat endpoint unreachable: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	c.logger.Debug("assistant reply received",
		logger.String("session_id", sessionID),
		logger.String("action", string(wire.Action)),
		logger.Int("products", len(wire.Products)))

	return &domain.AssistantResponse{
		Message:         wire.Message,
		Action:          wire.Action,
		Products:        c.normalizer.NormalizeAll(wire.Products),
		Error:           wire.Error,
		CollectionName:  wire.CollectionName,
		ShowCollections: wire.ShowCollections,
		ShowBookmarks:   wire.ShowBookmarks,
	}, nil
}
