package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/tanq16/paraget/internal/utils"
)

// Assemble concatenates parts into dest in index order, whatever order they
// arrived in, and removes each temporary once its bytes are copied. A failed
// copy stops assembly and leaves the remaining temporaries in place. Failed
// removals do not stop assembly but are reported once every part is copied.
func Assemble(dest string, parts []PartResult) error {
	log := utils.GetLogger("assembler")
	const op = "assemble"
	sorted := slices.Clone(parts)
	slices.SortFunc(sorted, func(a, b PartResult) int {
		return a.Index - b.Index
	})
	for i, part := range sorted {
		if part.Index != i {
			return newError(KindInvalidPlan, op, -1, fmt.Errorf("part indices are not dense: expected %d, found %d", i, part.Index))
		}
	}
	log.Debug().Int("count", len(sorted)).Msg("Assembling chunks in order")

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return newError(KindIO, op, -1, fmt.Errorf("error creating output file: %w", err))
	}
	var totalWritten int64
	var removeErrs []error
	for _, part := range sorted {
		written, err := appendPart(destFile, part.Path)
		if err != nil {
			destFile.Close()
			return newError(KindIO, op, part.Index, err)
		}
		totalWritten += written
		if err := os.Remove(part.Path); err != nil {
			log.Warn().Err(err).Str("file", part.Path).Msg("Could not remove temporary part")
			removeErrs = append(removeErrs, err)
		}
	}
	if err := destFile.Sync(); err != nil {
		destFile.Close()
		return newError(KindIO, op, -1, err)
	}
	if err := destFile.Close(); err != nil {
		return newError(KindIO, op, -1, err)
	}
	if len(removeErrs) > 0 {
		return newError(KindIO, op, -1, fmt.Errorf("output is complete but temporary parts remain: %w", errors.Join(removeErrs...)))
	}
	log.Debug().Int64("totalBytes", totalWritten).Str("outputFile", dest).Msg("File assembly completed")
	return nil
}

func appendPart(dst io.Writer, path string) (int64, error) {
	tempFile, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening chunk file: %w", err)
	}
	defer tempFile.Close()
	written, err := io.CopyBuffer(dst, tempFile, make([]byte, utils.DefaultBufferSize))
	if err != nil {
		return written, fmt.Errorf("error copying chunk data: %w", err)
	}
	return written, nil
}
