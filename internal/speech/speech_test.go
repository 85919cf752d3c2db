package speech

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

type fakeRecognizer struct {
	calibrateErr error
	result       Result
	listened     bool
}

func (f *fakeRecognizer) Calibrate(context.Context) error {
	return f.calibrateErr
}

func (f *fakeRecognizer) Listen(context.Context) (Result, error) {
	f.listened = true
	return f.result, nil
}

func TestCapture(t *testing.T) {
	cases := []struct {
		name    string
		rec     *fakeRecognizer
		outcome Outcome
		err     error
		listen  bool
	}{
		{"success", &fakeRecognizer{result: Result{Outcome: Success, Text: "password"}}, Success, nil, true},
		{"unavailable", &fakeRecognizer{result: Result{Outcome: Unavailable}}, Unavailable, ErrUnavailable, true},
		{"unintelligible", &fakeRecognizer{result: Result{Outcome: Unintelligible}}, Unintelligible, ErrUnintelligible, true},
		{"calibration failure", &fakeRecognizer{calibrateErr: errors.New("no microphone")}, Unavailable, ErrUnavailable, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Capture(context.Background(), tc.rec)
			if err != nil {
				t.Fatalf("Should not fail: %s", err)
			}
			if res.Outcome != tc.outcome {
				t.Errorf("Outcome: %s, want: %s", res.Outcome, tc.outcome)
			}
			if !errors.Is(res.Err(), tc.err) {
				t.Errorf("Err: %v, want: %v", res.Err(), tc.err)
			}
			if tc.rec.listened != tc.listen {
				t.Errorf("Listened: %v, want: %v", tc.rec.listened, tc.listen)
			}
		})
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestCommandRecognizer(t *testing.T) {
	requireShell(t)

	cases := []struct {
		name    string
		script  string
		outcome Outcome
		text    string
	}{
		{"transcript", "echo ' password '", Success, "password"},
		{"silence", "printf ''", Unintelligible, ""},
		{"service down", "echo 'quota exceeded' >&2; exit 1", Unavailable, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Capture(context.Background(), NewCommandRecognizer("sh", "-c", tc.script))
			if err != nil {
				t.Fatalf("Should not fail: %s", err)
			}
			if res.Outcome != tc.outcome {
				t.Errorf("Outcome: %s, want: %s", res.Outcome, tc.outcome)
			}
			if res.Text != tc.text {
				t.Errorf("Text: %q, want: %q", res.Text, tc.text)
			}
		})
	}
}

func TestCommandRecognizer_Missing(t *testing.T) {
	rec, err := ParseCommand("definitely-not-a-speech-tool-4711 --lang en")
	if err != nil {
		t.Fatalf("Should not fail parsing: %s", err)
	}

	res, err := Capture(context.Background(), rec)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if res.Outcome != Unavailable {
		t.Errorf("Outcome: %s, want: %s", res.Outcome, Unavailable)
	}
}

func TestParseCommand_Empty(t *testing.T) {
	if _, err := ParseCommand("   "); err == nil {
		t.Errorf("Empty command should fail")
	}
}
