package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/alvinbaena/pwdcheck/internal/config"
	"github.com/alvinbaena/pwdcheck/internal/input"
	"github.com/alvinbaena/pwdcheck/internal/report"
	"github.com/alvinbaena/pwdcheck/internal/speech"
	"github.com/alvinbaena/pwdcheck/internal/store"
	"github.com/alvinbaena/pwdcheck/internal/util"
	"github.com/alvinbaena/pwdcheck/pkg/hibp"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/thinhdanggroup/executor"
)

var ErrUnrecognizedMode = errors.New("unrecognized input mode")

const banner = "Every password you enter is checked against the database maintained by haveibeenpwned.com.\n" +
	"Only the first 5 characters of its SHA1 hash leave this machine (k-anonymity).\n" +
	"All entries are deleted when the check completes."

var (
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check passwords typed in manually or spoken through a speech-to-text command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	checkCmd.Flags().StringVarP(&mode, "mode", "m", "", "Input mode, 'speech' or 'manual'. Asked for when omitted")
	checkCmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Number of concurrent lookups for a manual batch. Results are printed in input order")
	checkCmd.Flags().StringVar(&speechCmd, "speech-cmd", "", "Speech-to-text command printing one transcript to stdout (overrides SPEECH_CMD)")
	checkCmd.Flags().StringVar(&storeDir, "store-dir", "", "Directory for the temporary password list (overrides STORE_DIR, defaults to the working directory)")
	checkCmd.Flags().BoolVar(&strength, "strength", false, "Also print a zxcvbn strength estimate for every password")

	rootCmd.AddCommand(checkCmd)
}

// session is one run of the check command with every collaborator injected.
type session struct {
	checker    *hibp.Checker
	stat       *hibp.Stats
	printer    *report.Printer
	modes      input.Prompter
	passwords  input.Prompter
	recognizer speech.Recognizer
	storeDir   string
	parallel   int
}

func checkCommand(cmd *cobra.Command) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if speechCmd != "" {
		cfg.SpeechCmd = speechCmd
	}
	if storeDir != "" {
		cfg.StoreDir = storeDir
	}

	stat := hibp.NewStats()
	s := &session{
		checker:  hibp.NewChecker(newClient(cfg, stat), stat),
		stat:     stat,
		printer:  report.NewPrinter(cmd.OutOrStdout(), strength),
		storeDir: cfg.StoreDir,
		parallel: parallel,
	}

	if cfg.SpeechCmd != "" {
		if s.recognizer, err = speech.ParseCommand(cfg.SpeechCmd); err != nil {
			return err
		}
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		s.modes = input.NewConsolePrompter("Type Y for speech-to-text or N for manual entry", false, nil, nil)
		s.passwords = input.NewConsolePrompter("Password to check ('done' when finished)", true, nil, nil)
	} else {
		// Piped input, one answer per line
		lines := input.NewLinePrompter(cmd.InOrStdin())
		s.modes = lines
		s.passwords = lines
	}

	var selected input.Mode
	switch mode {
	case "":
		selected = input.ModeUnknown
	case "speech":
		selected = input.ModeSpeech
	case "manual":
		selected = input.ModeManual
	default:
		return errors.New("mode must be 'speech' or 'manual'")
	}

	return s.run(cmd.Context(), selected)
}

// run asks for the mode unless one was given and checks the passwords of that mode.
func (s *session) run(ctx context.Context, selected input.Mode) error {
	if selected == input.ModeUnknown {
		s.printer.Line(banner)
		answer, err := s.modes.Prompt()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		selected = input.ParseMode(answer)
	}

	switch selected {
	case input.ModeManual:
		return s.runManual(ctx)
	case input.ModeSpeech:
		return s.runSpeech(ctx)
	}

	s.printer.Line("Your response was not recognized. Please restart the program.")
	return ErrUnrecognizedMode
}

func (s *session) runManual(ctx context.Context) error {
	err := store.With(s.storeDir, func(st *store.Store) error {
		if _, err := input.CollectManual(s.passwords, st); err != nil {
			return err
		}

		src, err := input.FromStore(st)
		if err != nil {
			return err
		}

		return s.checkAll(ctx, src)
	})
	if errors.Is(err, input.ErrInterrupted) {
		s.printer.Line("Password check aborted, nothing was checked and password inputs have been deleted.")
		return err
	}
	if err != nil {
		return err
	}

	s.stat.Done()
	s.printer.Line("Password check is complete and password inputs have been deleted.")
	return nil
}

func (s *session) checkAll(ctx context.Context, src input.Source) error {
	passwords, err := input.Drain(src)
	if err != nil {
		return err
	}

	if s.parallel > 1 && len(passwords) > 1 {
		return s.checkParallel(ctx, passwords)
	}

	for _, pwd := range passwords {
		result, err := s.checker.Check(ctx, pwd)
		if err != nil {
			return err
		}
		if err = s.printer.Result(result); err != nil {
			return err
		}
	}
	return nil
}

// checkParallel looks up passwords with a bounded pool and prints them in input order. The
// first failed lookup, in input order, ends the output.
func (s *session) checkParallel(ctx context.Context, passwords []string) error {
	results := make([]hibp.Result, len(passwords))
	errs := make([]error, len(passwords))

	pool, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * s.parallel,
		NumWorkers:    s.parallel,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	lookup := func(i int, pwd string) {
		results[i], errs[i] = s.checker.Check(ctx, pwd)
	}

	log.Debug().Msgf("checking %d passwords with %d workers", len(passwords), s.parallel)
	for i, pwd := range passwords {
		if err = pool.Publish(lookup, i, pwd); err != nil {
			return err
		}
	}
	pool.Wait()

	for i := range passwords {
		if errs[i] != nil {
			return errs[i]
		}
		if err = s.printer.Result(results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) runSpeech(ctx context.Context) error {
	if s.recognizer == nil {
		s.printer.Line("ERROR: %s", speech.ErrUnavailable)
		return errors.New("no speech-to-text command configured, set SPEECH_CMD or --speech-cmd")
	}

	log.Info().Msg("starting speech recognition")
	res, err := speech.Capture(ctx, s.recognizer)
	if err != nil {
		return err
	}

	if res.Outcome != speech.Success {
		s.printer.Line("I couldn't understand that. Please restart")
		s.printer.Line("ERROR: %s", res.Err())
		if res.Detail != "" {
			log.Debug().Msgf("speech failure detail: %s", res.Detail)
		}
		return res.Err()
	}

	s.printer.Line("You said: %s", res.Text)
	result, err := s.checker.Check(ctx, res.Text)
	if err != nil {
		return err
	}
	if err = s.printer.Result(result); err != nil {
		return err
	}

	s.stat.Done()
	s.printer.Line("Password check is complete and password inputs have been deleted.")
	return nil
}
