// Package delivery uploads rendered CSV batches to the remote ingestion API
// as multipart form posts. Delivery is at-least-once: the caller retries a
// failed batch on a later cycle because the checkpoint only tracks local
// persistence.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

const componentName = "delivery"

// fileField is the multipart form field the ingestion API reads.
const fileField = "file"

// Client sends one CSV batch per call to the ingestion API.
type Client interface {
	// Enabled reports whether an endpoint is configured.
	Enabled() bool
	// Send uploads payload under fileName and returns the API's decoded
	// JSON response. A non-2xx status or an undecodable body is an error.
	Send(ctx context.Context, fileName string, payload []byte) (map[string]interface{}, error)
}

// httpClient implements Client over net/http.
type httpClient struct {
	cfg    config.DeliveryConfig
	client *http.Client
}

// NewClient creates a delivery client from the configured endpoint, API key
// and static headers. An empty endpoint yields a disabled client.
func NewClient(cfg *config.Config) Client {
	deliveryCfg := cfg.Uplink.Delivery

	timeout := time.Duration(deliveryCfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		cfg:    deliveryCfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Enabled() bool {
	return c.cfg.Endpoint != ""
}

// Send posts payload as a multipart form with a single text/csv file part.
func (c *httpClient) Send(ctx context.Context, fileName string, payload []byte) (map[string]interface{}, error) {
	if !c.Enabled() {
		return nil, exception.New(componentName, "delivery endpoint is not configured", nil, false)
	}

	requestID := uuid.NewString()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, fileName))
	partHeader.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return nil, exception.New(componentName, "failed to build multipart body", err, false)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, exception.New(componentName, "failed to build multipart body", err, false)
	}
	if err := mw.Close(); err != nil {
		return nil, exception.New(componentName, "failed to finalize multipart body", err, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return nil, exception.New(componentName, "failed to build delivery request", err, false)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", requestID)
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
	for name, value := range c.cfg.Headers {
		req.Header.Set(name, value)
	}

	logger.Debugf("Delivering '%s' (%d bytes, request %s) to %s.", fileName, len(payload), requestID, c.cfg.Endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, exception.New(componentName, fmt.Sprintf("delivery request '%s' failed", requestID), err, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.New(componentName, fmt.Sprintf("failed to read delivery response for request '%s'", requestID), err, true)
	}

	logger.Debugf("Delivery response for request %s: status=%d body=%s", requestID, resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, exception.New(componentName,
			fmt.Sprintf("ingestion API rejected '%s' with status %d: %s", fileName, resp.StatusCode, respBody), nil, true)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, exception.New(componentName,
			fmt.Sprintf("ingestion API returned a non-JSON body for '%s'", fileName), err, true)
	}

	logger.Infof("Delivered '%s' (%d bytes, request %s).", fileName, len(payload), requestID)
	return decoded, nil
}
