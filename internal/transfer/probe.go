package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tanq16/paraget/internal/utils"
)

// ResourceInfo is what a HEAD request tells us about the remote file.
type ResourceInfo struct {
	TotalLength     uint64
	SupportsPartial bool
}

// Probe issues a HEAD request. A missing or unparsable Content-Length is an
// error; range support is assumed only for an exact "Accept-Ranges: bytes".
func Probe(ctx context.Context, tc *TransferContext) (ResourceInfo, error) {
	log := utils.GetLogger("prober")
	const op = "probe resource"
	req, err := tc.newRequest(ctx, http.MethodHead)
	if err != nil {
		return ResourceInfo{}, newError(KindTransport, op, -1, fmt.Errorf("error creating HEAD request: %w", err))
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return ResourceInfo{}, newError(KindTransport, op, -1, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ResourceInfo{}, statusError(op, -1, resp.StatusCode)
	}

	contentLength := strings.TrimSpace(resp.Header.Get("Content-Length"))
	if contentLength == "" {
		return ResourceInfo{}, newError(KindMissingHeader, op, -1, errors.New("server didn't provide Content-Length header"))
	}
	size, err := strconv.ParseUint(contentLength, 10, 64)
	if err != nil {
		return ResourceInfo{}, newError(KindMissingHeader, op, -1, fmt.Errorf("invalid Content-Length %q: %w", contentLength, err))
	}

	info := ResourceInfo{
		TotalLength:     size,
		SupportsPartial: strings.TrimSpace(resp.Header.Get("Accept-Ranges")) == "bytes",
	}
	log.Debug().Uint64("size", info.TotalLength).Bool("rangeSupported", info.SupportsPartial).Str("url", tc.url).Msg("Probed resource")
	return info, nil
}
