package local_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	storageConfig "github.com/nyuad-access/fidas-uplink/internal/adapter/storage/config"
	"github.com/nyuad-access/fidas-uplink/internal/adapter/storage/local"
)

func newTestAdapter(t *testing.T) (string, storageAdapter.StorageConnection) {
	t.Helper()
	dir := t.TempDir()
	adapter, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: dir}, "landing")
	require.NoError(t, err)
	return dir, adapter
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	_, a := newTestAdapter(t)
	ctx := context.Background()

	content := "date\ttime\tPM2.5\n03/01/2025\t10:05:00 AM\t10.5\n"
	require.NoError(t, a.Upload(ctx, "", "DUSTMONITOR_17712_2025_03.txt", strings.NewReader(content), "text/plain"))

	rc, err := a.Download(ctx, "", "DUSTMONITOR_17712_2025_03.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestListObjectsHonorsPrefix(t *testing.T) {
	_, a := newTestAdapter(t)
	ctx := context.Background()

	for _, name := range []string{"DUSTMONITOR_17712_2025_03.txt", "DUSTMONITOR_17712_2025_04.txt", "notes.md"} {
		require.NoError(t, a.Upload(ctx, "", name, strings.NewReader("x"), "text/plain"))
	}

	var listed []string
	require.NoError(t, a.ListObjects(ctx, "", "DUSTMONITOR_", func(objectName string) error {
		listed = append(listed, objectName)
		return nil
	}))
	assert.ElementsMatch(t, []string{
		"DUSTMONITOR_17712_2025_03.txt",
		"DUSTMONITOR_17712_2025_04.txt",
	}, listed)
}

func TestDeleteObjectIgnoresMissing(t *testing.T) {
	_, a := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.Upload(ctx, "", "x.txt", strings.NewReader("x"), "text/plain"))
	require.NoError(t, a.DeleteObject(ctx, "", "x.txt"))

	_, err := a.Download(ctx, "", "x.txt")
	assert.Error(t, err)

	// A second delete must not fail.
	assert.NoError(t, a.DeleteObject(ctx, "", "x.txt"))
}

func TestPathEscapeIsRejected(t *testing.T) {
	_, a := newTestAdapter(t)
	ctx := context.Background()

	err := a.Upload(ctx, "", "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)

	_, err = a.Download(ctx, "", "../../etc/passwd")
	assert.Error(t, err)
}

func TestNewLocalAdapterRequiresBaseDir(t *testing.T) {
	_, err := local.NewLocalAdapter(storageConfig.StorageConfig{}, "landing")
	assert.Error(t, err)
}
