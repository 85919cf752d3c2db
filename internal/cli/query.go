package cli

import (
	"context"
	"errors"

	"github.com/alvinbaena/pwdcheck/internal/config"
	"github.com/alvinbaena/pwdcheck/internal/report"
	"github.com/alvinbaena/pwdcheck/internal/util"
	"github.com/alvinbaena/pwdcheck/pkg/hibp"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	queryCmd = &cobra.Command{
		Use:   "query [PASSWORD]",
		Short: "Check a single password, or many in an interactive session",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return queryCommand(cmd, "")
			} else {
				return queryCommand(cmd, args[0])
			}
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	queryCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode.")
	queryCmd.Flags().BoolVarP(&hashed, "hashed", "s", false, "If the supplied password will be a Hexadecimal SHA1 hash or a plain text string.")
	queryCmd.Flags().BoolVar(&strength, "strength", false, "Also print a zxcvbn strength estimate")

	rootCmd.AddCommand(queryCmd)
}

func queryCommand(cmd *cobra.Command, password string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stat := hibp.NewStats()
	checker := hibp.NewChecker(newClient(cfg, stat), stat)
	// A hash says nothing about the strength of the password behind it
	printer := report.NewPrinter(cmd.OutOrStdout(), strength && !hashed)

	if !interactive {
		return queryPassword(cmd.Context(), checker, printer, password)
	}

	var label string
	if hashed {
		label = "SHA1 Hex hash"
	} else {
		label = "Password"
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a valid password")
			}

			if hashed {
				if _, _, err := hibp.ParseHash(input); err != nil {
					return err
				}
			}
			return nil
		},
	}

	if !hashed {
		prompt.Mask = '*'
	} else {
		log.Info().Msgf("Flag 'hashed' is set. Please use SHA1 Hashed passwords.")
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err = runInteractiveSession(cmd.Context(), prompt, checker, printer); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			log.Info().Msgf("Goodbye")
		} else {
			log.Error().Err(err).Msgf("Error during interactive session")
		}
	}

	stat.Done()
	// No return to avoid the default cobra error message
	return nil
}

func runInteractiveSession(ctx context.Context, prompt promptui.Prompt, checker *hibp.Checker, printer *report.Printer) error {
	for {
		result, err := prompt.Run()
		if err != nil {
			return err
		}

		if err = queryPassword(ctx, checker, printer, result); err != nil {
			log.Error().Err(err).Msg("Error during query")
		}
	}
}

func queryPassword(ctx context.Context, checker *hibp.Checker, printer *report.Printer, password string) error {
	var result hibp.Result
	var err error
	if hashed {
		result, err = checker.CheckHash(ctx, password)
	} else {
		result, err = checker.Check(ctx, password)
	}
	if err != nil {
		return err
	}

	return printer.Result(result)
}
