package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"aivaidya-be/pkg/triage"
)

const (
	endpointDiagnose = "/api/ai/diagnose"
	endpointSelfTest = "/api/ai/self-test"
	endpointStats    = "/api/ai/stats"

	msgAIRequestFailed = "AI request failed"
)

// envelope mirrors the server's response body.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Echo    string          `json:"echo,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// APIClient talks to the triage endpoints over HTTP.
type APIClient struct {
	client *http.Client
	server string
	token  string
}

func NewAPIClient(server string, timeout time.Duration) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &APIClient{
		client: &http.Client{Timeout: timeout},
		server: normalizedServer,
	}, nil
}

// WithToken sets the bearer token used for operator endpoints.
func (c *APIClient) WithToken(token string) *APIClient {
	c.token = token
	return c
}

// normalizeServerURL adds a scheme when missing and drops any path or trailing slash.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Diagnose posts symptoms and images as multipart form data and returns the verdict payload.
func (c *APIClient) Diagnose(ctx context.Context, symptoms string, images []triage.Image) (json.RawMessage, error) {
	body, contentType, err := buildDiagnoseForm(symptoms, images)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+endpointDiagnose, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func buildDiagnoseForm(symptoms string, images []triage.Image) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("symptoms", symptoms); err != nil {
		return nil, "", fmt.Errorf("failed to write symptoms: %w", err)
	}

	for i, img := range images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		mimeType := img.MIMEType
		if mimeType == "" {
			mimeType = triage.DefaultMIMEType
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, escapeQuotes(name)))
		h.Set("Content-Type", mimeType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// SelfTest calls the self-test endpoint and returns the model's echo.
func (c *APIClient) SelfTest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+endpointSelfTest, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return "", err
	}
	return env.Echo, nil
}

// Stats fetches the operator counters. Requires a token.
func (c *APIClient) Stats(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+endpointStats, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// do sends req and unwraps the envelope. A failed status yields the envelope's
// message when there is one, otherwise "Request failed (<status>)".
func (c *APIClient) do(req *http.Request) (*envelope, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			return nil, errors.New(env.Message)
		}
		return nil, fmt.Errorf("Request failed (%d)", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return nil, errors.New(env.Message)
		}
		return nil, errors.New(msgAIRequestFailed)
	}
	return &env, nil
}
