package transfer

import (
	"errors"
	"fmt"
)

// RangeSpec is the half-open byte range [Start, End) of one part.
type RangeSpec struct {
	Index int
	Start uint64
	End   uint64
}

func (r RangeSpec) Len() uint64 {
	return r.End - r.Start
}

// Header is the Range header value; the wire format uses an inclusive end.
func (r RangeSpec) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End-1)
}

// Plan splits total into parts contiguous ranges of floor(total/parts) bytes,
// with the remainder going to the last range.
func Plan(total uint64, parts int) ([]RangeSpec, error) {
	const op = "plan ranges"
	if parts <= 0 {
		return nil, newError(KindInvalidPlan, op, -1, fmt.Errorf("part count must be positive, got %d", parts))
	}
	n := uint64(parts)
	if total == 0 && n > 1 {
		return nil, newError(KindInvalidPlan, op, -1, errors.New("cannot split a zero-length resource"))
	}
	if total > 0 && n > total {
		return nil, newError(KindInvalidPlan, op, -1, fmt.Errorf("%d parts would leave empty ranges in %d bytes", parts, total))
	}

	partLen := total / n
	ranges := make([]RangeSpec, parts)
	for i := range parts {
		idx := uint64(i)
		end := (idx + 1) * partLen
		if i == parts-1 {
			end = total
		}
		ranges[i] = RangeSpec{
			Index: i,
			Start: idx * partLen,
			End:   end,
		}
	}
	return ranges, nil
}
