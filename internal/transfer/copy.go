package transfer

import (
	"errors"
	"io"

	"github.com/tanq16/paraget/internal/utils"
)

var errBodyTooLong = errors.New("response body longer than requested range")

// streamCopy moves src into dst in fixed-size chunks, reporting progress as it
// goes. Read failures are transport errors and write failures are io errors;
// limit < 0 means no length check.
func streamCopy(dst io.Writer, src io.Reader, limit int64, progress Reporter, op string, part int) (int64, error) {
	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		bytesRead, readErr := src.Read(buffer)
		if bytesRead > 0 {
			if limit >= 0 && written+int64(bytesRead) > limit {
				return written, newError(KindTransport, op, part, errBodyTooLong)
			}
			if _, writeErr := dst.Write(buffer[:bytesRead]); writeErr != nil {
				return written, newError(KindIO, op, part, writeErr)
			}
			written += int64(bytesRead)
			progress.Add(int64(bytesRead))
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, newError(KindTransport, op, part, readErr)
		}
	}
	if limit >= 0 && written != limit {
		return written, newError(KindTransport, op, part, io.ErrUnexpectedEOF)
	}
	return written, nil
}
