package hibp

import (
	"errors"
	"testing"
)

const sampleRange = "1D72CD07550416C216D8AD296BF5C0AE8E0:10\r\n" +
	"1E2AAA439972480CEC7F16C795BBB429372:1\r\n" +
	"1E4C9B93F3F0682250B6CF8331B7EE68FD8:9545824\r\n" +
	"1E4C9B93F3F0682250B6CF8331B7EE68FD9:0\r\n" +
	"1F2B668E8AABEF1C59E9EC6F82E3F3CD786:1\r\n"

func TestCount(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		suffix string
		want   uint64
		fail   bool
	}{
		{"match", sampleRange, "1E4C9B93F3F0682250B6CF8331B7EE68FD8", 9545824, false},
		{"absent", sampleRange, "0000000000000000000000000000000000A", 0, false},
		{"padding entry", sampleRange, "1E4C9B93F3F0682250B6CF8331B7EE68FD9", 0, false},
		{"empty body", "", "1E4C9B93F3F0682250B6CF8331B7EE68FD8", 0, false},
		{"no trailing newline", "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3", "1E4C9B93F3F0682250B6CF8331B7EE68FD8", 3, false},
		{"case sensitive", sampleRange, "1e4c9b93f3f0682250b6cf8331b7ee68fd8", 0, false},
		{"first match wins", "AAA:1\nAAA:2\n", "AAA", 1, false},
		{"match before garbage", "AAA:7\nnot a record\n", "AAA", 7, false},
		{"missing colon", "AAA:1\nnot a record\n", "BBB", 0, true},
		{"bad count", "AAA:many\n", "BBB", 0, true},
		{"negative count", "AAA:-1\n", "AAA", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Count([]byte(tc.body), tc.suffix)
			if tc.fail {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("Count should fail with ErrMalformedResponse, got: %v", err)
				}
				return
			}

			if err != nil {
				t.Errorf("Count should not fail: %s", err)
			}
			if got != tc.want {
				t.Errorf("Count: %d, want: %d", got, tc.want)
			}
		})
	}
}
