package speech

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// CommandRecognizer runs an external speech-to-text program that records one utterance and
// writes the transcript to stdout. A missing or failing program makes the service
// Unavailable, an empty transcript is Unintelligible.
type CommandRecognizer struct {
	name string
	args []string
}

// ParseCommand builds a recognizer from a command line like "whisper-listen --lang en".
// Arguments are split on whitespace, no shell is involved.
func ParseCommand(cmdLine string) (*CommandRecognizer, error) {
	fields := strings.Fields(cmdLine)
	if len(fields) == 0 {
		return nil, errors.New("speech command is empty")
	}
	return NewCommandRecognizer(fields[0], fields[1:]...), nil
}

func NewCommandRecognizer(name string, args ...string) *CommandRecognizer {
	return &CommandRecognizer{name: name, args: args}
}

// Calibrate only checks the program can be found, the program handles ambient noise itself.
func (c *CommandRecognizer) Calibrate(_ context.Context) error {
	path, err := exec.LookPath(c.name)
	if err != nil {
		return err
	}
	log.Debug().Msgf("speech command resolved to %s", path)
	return nil
}

func (c *CommandRecognizer) Listen(ctx context.Context) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}

		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		log.Debug().Err(err).Msgf("speech command failed: %s", detail)
		return Result{Outcome: Unavailable, Detail: detail}, nil
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return Result{Outcome: Unintelligible}, nil
	}
	return Result{Outcome: Success, Text: text}, nil
}
