package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFull(t *testing.T) {
	content := testContent(5000)
	ts := newTestServer(t, content, serverOptions{noRanges: true})
	dest := filepath.Join(t.TempDir(), "whole.bin")
	require.NoError(t, os.WriteFile(dest, make([]byte, 9000), 0644))

	written, err := FetchFull(context.Background(), ts.transferContext(ts.URL+"/whole.bin"), dest, int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	heads, fullGets, rangeGets := ts.counts()
	assert.Zero(t, heads)
	assert.Equal(t, 1, fullGets)
	assert.Zero(t, rangeGets)
}

func TestFetchFull_UnknownLength(t *testing.T) {
	content := testContent(300)
	ts := newTestServer(t, content, serverOptions{noRanges: true})
	dest := filepath.Join(t.TempDir(), "whole.bin")

	written, err := FetchFull(context.Background(), ts.transferContext(ts.URL), dest, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), written)
}

func TestFetchFull_LengthMismatch(t *testing.T) {
	ts := newTestServer(t, testContent(300), serverOptions{noRanges: true})
	dest := filepath.Join(t.TempDir(), "whole.bin")

	_, err := FetchFull(context.Background(), ts.transferContext(ts.URL), dest, 400)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestFetchFull_StatusError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	dest := filepath.Join(t.TempDir(), "whole.bin")

	tc := NewTransferContext(server.Client(), server.URL+"/nope", "", nil)
	_, err := FetchFull(context.Background(), tc, dest, 10)
	require.Error(t, err)
	assert.Equal(t, KindUpstreamStatus, KindOf(err))
	assert.NoFileExists(t, dest)
}
