// Package speech is the boundary to a speech-to-text capability. Recognition itself happens
// elsewhere; this package only defines the outcome of one utterance and drives a recognizer.
package speech

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

type Outcome int

const (
	Success Outcome = iota
	// Unavailable means the recognition service could not be reached or failed.
	Unavailable
	// Unintelligible means the service answered but could not make out any words.
	Unintelligible
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Unavailable:
		return "unavailable"
	case Unintelligible:
		return "unintelligible"
	}
	return "unknown"
}

var (
	ErrUnavailable    = errors.New("API unavailable")
	ErrUnintelligible = errors.New("unable to recognize speech")
)

// Result of one utterance. Text is only set on Success.
type Result struct {
	Outcome Outcome
	Text    string
	// Detail describes the failure, if the recognizer gave one.
	Detail string
}

// Err maps a failed outcome to its error, nil on Success.
func (r Result) Err() error {
	switch r.Outcome {
	case Unavailable:
		return ErrUnavailable
	case Unintelligible:
		return ErrUnintelligible
	}
	return nil
}

// Recognizer captures and transcribes audio.
type Recognizer interface {
	// Calibrate adjusts to the ambient noise before listening.
	Calibrate(ctx context.Context) error
	// Listen blocks until one utterance was captured and transcribed.
	Listen(ctx context.Context) (Result, error)
}

// Capture calibrates r and listens for a single utterance. The returned error is only set
// for failures outside the recognition outcomes, like a cancelled context.
func Capture(ctx context.Context, r Recognizer) (Result, error) {
	if err := r.Calibrate(ctx); err != nil {
		log.Debug().Err(err).Msg("calibration failed")
		return Result{Outcome: Unavailable, Detail: err.Error()}, nil
	}

	log.Info().Msg("Say something!")
	res, err := r.Listen(ctx)
	if err != nil {
		return Result{}, err
	}
	log.Info().Msg("Got it! Processing...")

	return res, nil
}
