package transfer

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tanq16/paraget/internal/transfer/mocks"
)

func TestProbe_Headers(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		header       http.Header
		expected     ResourceInfo
		expectedKind Kind
	}{
		{
			name:     "ranges supported",
			status:   http.StatusOK,
			header:   http.Header{"Content-Length": {"1000"}, "Accept-Ranges": {"bytes"}},
			expected: ResourceInfo{TotalLength: 1000, SupportsPartial: true},
		},
		{
			name:     "accept ranges absent",
			status:   http.StatusOK,
			header:   http.Header{"Content-Length": {"1000"}},
			expected: ResourceInfo{TotalLength: 1000},
		},
		{
			name:     "accept ranges none",
			status:   http.StatusOK,
			header:   http.Header{"Content-Length": {"1000"}, "Accept-Ranges": {"none"}},
			expected: ResourceInfo{TotalLength: 1000},
		},
		{
			name:     "accept ranges other token",
			status:   http.StatusOK,
			header:   http.Header{"Content-Length": {"1000"}, "Accept-Ranges": {"Bytes"}},
			expected: ResourceInfo{TotalLength: 1000},
		},
		{
			name:     "zero length",
			status:   http.StatusOK,
			header:   http.Header{"Content-Length": {"0"}, "Accept-Ranges": {"bytes"}},
			expected: ResourceInfo{TotalLength: 0, SupportsPartial: true},
		},
		{
			name:         "missing content length",
			status:       http.StatusOK,
			header:       http.Header{"Accept-Ranges": {"bytes"}},
			expectedKind: KindMissingHeader,
		},
		{
			name:         "invalid content length",
			status:       http.StatusOK,
			header:       http.Header{"Content-Length": {"-12"}},
			expectedKind: KindMissingHeader,
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			expectedKind: KindUpstreamStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			doer := mocks.NewMockDoer(ctrl)
			doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodHead, req.Method)
				assert.Equal(t, "paraget-test/1.0", req.Header.Get("User-Agent"))
				return stubResponse(tt.status, tt.header, ""), nil
			})

			tc := NewTransferContext(doer, "http://example.test/file.bin", "paraget-test/1.0", nil)
			info, err := Probe(context.Background(), tc)
			if tt.expectedKind != KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, info)
		})
	}
}

func TestProbe_StatusErrorCarriesCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(stubResponse(http.StatusForbidden, nil, ""), nil)

	_, err := Probe(context.Background(), NewTransferContext(doer, "http://example.test/x", "", nil))
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Equal(t, -1, te.Part)
	assert.Contains(t, err.Error(), "unexpected status code 403")
}

func TestProbe_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockDoer(ctrl)
	cause := errors.New("connection refused")
	doer.EXPECT().Do(gomock.Any()).Return(nil, cause)

	_, err := Probe(context.Background(), NewTransferContext(doer, "http://example.test/x", "", nil))
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestProbe_AgainstServer(t *testing.T) {
	ts := newTestServer(t, testContent(4096), serverOptions{})
	info, err := Probe(context.Background(), ts.transferContext(ts.URL+"/file.bin"))
	require.NoError(t, err)
	assert.Equal(t, ResourceInfo{TotalLength: 4096, SupportsPartial: true}, info)

	heads, fullGets, rangeGets := ts.counts()
	assert.Equal(t, 1, heads)
	assert.Zero(t, fullGets)
	assert.Zero(t, rangeGets)
}
