package transfer

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tanq16/paraget/internal/transfer/mocks"
	"github.com/tanq16/paraget/internal/utils"
)

func TestFetchPart_WritesRangeToHiddenSibling(t *testing.T) {
	content := testContent(1000)
	ts := newTestServer(t, content, serverOptions{})
	dest := filepath.Join(t.TempDir(), "file.bin")
	reporter := &countingReporter{}
	tc := NewTransferContext(ts.Client(), ts.URL+"/file.bin", "paraget-test/1.0", reporter)

	res, err := FetchPart(context.Background(), tc, RangeSpec{Index: 1, Start: 250, End: 500}, dest)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, filepath.Join(filepath.Dir(dest), ".file.bin.part-1"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, content[250:500], data)
	assert.Equal(t, []string{"bytes=250-499"}, ts.rangeRequests())
	assert.Equal(t, int64(250), reporter.total.Load())
	assert.NoFileExists(t, dest)
}

func TestFetchPart_Failures(t *testing.T) {
	tests := []struct {
		name         string
		response     *http.Response
		expectedKind Kind
	}{
		{
			name:         "server error",
			response:     stubResponse(http.StatusInternalServerError, nil, ""),
			expectedKind: KindUpstreamStatus,
		},
		{
			name:         "range ignored",
			response:     stubResponse(http.StatusOK, nil, strings.Repeat("x", 100)),
			expectedKind: KindUpstreamStatus,
		},
		{
			name:         "short body",
			response:     stubResponse(http.StatusPartialContent, nil, "abc"),
			expectedKind: KindTransport,
		},
		{
			name:         "long body",
			response:     stubResponse(http.StatusPartialContent, nil, strings.Repeat("x", 11)),
			expectedKind: KindTransport,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			doer := mocks.NewMockDoer(ctrl)
			doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "bytes=10-19", req.Header.Get("Range"))
				return tt.response, nil
			})
			dest := filepath.Join(t.TempDir(), "out.bin")
			tc := NewTransferContext(doer, "http://example.test/out.bin", "", nil)

			_, err := FetchPart(context.Background(), tc, RangeSpec{Index: 2, Start: 10, End: 20}, dest)
			require.Error(t, err)
			assert.Equal(t, tt.expectedKind, KindOf(err))
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 2, te.Part)
			assert.NoFileExists(t, utils.PartPath(dest, 2))
		})
	}
}

func TestFetchPart_ShortBodyIsUnexpectedEOF(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(stubResponse(http.StatusPartialContent, nil, "abc"), nil)
	dest := filepath.Join(t.TempDir(), "out.bin")

	_, err := FetchPart(context.Background(), NewTransferContext(doer, "http://example.test/", "", nil), RangeSpec{Index: 0, Start: 0, End: 10}, dest)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFetchPart_SinkCreationFailure(t *testing.T) {
	ts := newTestServer(t, testContent(100), serverOptions{})
	dest := filepath.Join(t.TempDir(), "missing-dir", "out.bin")

	_, err := FetchPart(context.Background(), ts.transferContext(ts.URL), RangeSpec{Index: 0, Start: 0, End: 50}, dest)
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchPart_CancelledContext(t *testing.T) {
	ts := newTestServer(t, testContent(100), serverOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := filepath.Join(t.TempDir(), "out.bin")

	_, err := FetchPart(ctx, ts.transferContext(ts.URL), RangeSpec{Index: 0, Start: 0, End: 50}, dest)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}
