package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notification is the payload delivered to a user's devices.
type Notification struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Gateway represents a push notification gateway interface
type Gateway interface {
	SendToUser(userID string, notification Notification) error
}

// HTTPGateway dispatches notifications through the push service's REST API.
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// MockGateway is a no-op gateway for local development and tests
type MockGateway struct{}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey string) Gateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() Gateway {
	return &MockGateway{}
}

// SendToUser sends a notification to all registered devices of a user
func (g *HTTPGateway) SendToUser(userID string, notification Notification) error {
	payload := map[string]interface{}{
		"userId":       userID,
		"notification": notification,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, g.BaseURL+"/v1/push", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToUser is a no-op on the mock gateway
func (g *MockGateway) SendToUser(userID string, notification Notification) error {
	return nil
}
