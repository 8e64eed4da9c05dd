package delivery_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/delivery"
)

func newTestClient(endpoint string) delivery.Client {
	cfg := config.NewConfig()
	cfg.Uplink.Delivery.Endpoint = endpoint
	cfg.Uplink.Delivery.APIKey = "test-key"
	cfg.Uplink.Delivery.Headers = map[string]string{"X-Station": "access"}
	return delivery.NewClient(cfg)
}

func TestClientDisabledWithoutEndpoint(t *testing.T) {
	cfg := config.NewConfig()
	client := delivery.NewClient(cfg)

	assert.False(t, client.Enabled())
	_, err := client.Send(context.Background(), "x.csv", []byte("datetime\n"))
	assert.Error(t, err)
}

func TestSendPostsMultipartCSV(t *testing.T) {
	var (
		gotAPIKey    string
		gotStation   string
		gotRequestID string
		gotFilename  string
		gotPartType  string
		gotPayload   []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-Key")
		gotStation = r.Header.Get("X-Station")
		gotRequestID = r.Header.Get("X-Request-ID")

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		part, err := mr.NextPart()
		require.NoError(t, err)
		require.Equal(t, "file", part.FormName())
		gotFilename = part.FileName()
		gotPartType = part.Header.Get("Content-Type")
		gotPayload, err = io.ReadAll(part)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","rows":2}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	require.True(t, client.Enabled())

	payload := []byte("datetime,name\n20250301T1000+0400,Fidas Station (ACCESS)\n")
	resp, err := client.Send(context.Background(), "NYUAD_FIDAS_DATA_2025_03.csv", payload)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "access", gotStation)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "NYUAD_FIDAS_DATA_2025_03.csv", gotFilename)
	assert.Equal(t, "text/csv", gotPartType)
	assert.Equal(t, payload, gotPayload)
	assert.Equal(t, "ok", resp["status"])
}

func TestSendRejectedByServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad batch"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Send(context.Background(), "x.csv", []byte("datetime\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestSendNonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Send(context.Background(), "x.csv", []byte("datetime\n"))
	assert.Error(t, err)
}
