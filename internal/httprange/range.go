// internal/httprange/range.go

// Package httprange parses and validates the single-range form of the HTTP
// Range request header used for audio seeking.
package httprange

import (
	"regexp"
	"strconv"
)

// Only "bytes=<start>-<end>" with a decimal start and optional decimal end
// is accepted. Suffix ranges ("bytes=-500") and multi-range headers
// ("bytes=0-1,5-9") fail the match and callers fall back to a full-body
// response.
var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

// ByteRange is an inclusive byte interval within a file of known size.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// Parse extracts a byte range from a Range header value against a file of
// the given size. A missing end position defaults to size-1. The range is
// valid iff 0 <= start <= end <= size-1; end positions at or beyond the
// file size invalidate the whole range rather than being clamped, matching
// the store's strict policy.
func Parse(header string, size int64) (ByteRange, bool) {
	if header == "" || size <= 0 {
		return ByteRange{}, false
	}

	match := rangePattern.FindStringSubmatch(header)
	if match == nil {
		return ByteRange{}, false
	}

	start, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return ByteRange{}, false
	}

	end := size - 1
	if match[2] != "" {
		end, err = strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			return ByteRange{}, false
		}
	}

	if start >= size || end >= size || start > end {
		return ByteRange{}, false
	}

	return ByteRange{Start: start, End: end}, true
}
