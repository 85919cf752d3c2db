package main

import (
	"errors"
	"os"

	"github.com/alvinbaena/pwdcheck/internal/cli"
	"github.com/alvinbaena/pwdcheck/internal/input"
	"github.com/alvinbaena/pwdcheck/internal/util"
	"github.com/rs/zerolog/log"
)

func main() {
	util.SetupLogging(os.Stderr)

	if err := cli.Execute(); err != nil {
		// Already explained to the user
		if !errors.Is(err, cli.ErrUnrecognizedMode) && !errors.Is(err, input.ErrInterrupted) {
			log.Error().Err(err).Msg("password check failed")
		}
		os.Exit(1)
	}
}
