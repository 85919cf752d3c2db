package hibp

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Count scans a range response for suffix and returns its breach count. A suffix that is
// not in the response counts 0. Lines are split on the first colon and compared exactly,
// the API always answers in uppercase. Lines that cannot be parsed before the match make
// the whole response invalid, so a broken body is never mistaken for "not found".
func Count(body []byte, suffix string) (uint64, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		hash, count, found := strings.Cut(text, ":")
		if !found {
			return 0, errors.Wrapf(ErrMalformedResponse, "line %d has no count", line)
		}

		n, err := strconv.ParseUint(count, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedResponse, "line %d count %q", line, count)
		}

		if hash == suffix {
			return n, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return 0, nil
}
