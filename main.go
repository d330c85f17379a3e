// lokey turns selected text into translation keys and keeps the
// translation file up to date.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/lokey/config"
	"github.com/minios-linux/lokey/i18n"
	"github.com/minios-linux/lokey/key"
	"github.com/minios-linux/lokey/localize"
	"github.com/minios-linux/lokey/notify"
	"github.com/minios-linux/lokey/picker"
	"github.com/minios-linux/lokey/selection"
	"github.com/minios-linux/lokey/session"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("reported")

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
	uiLang  string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lokey",
		Short: "Turn selected text into translation keys",
		Long: `lokey turns selected text into translation keys.

The selected text is stored in a translation file (flat JSON or Java
.properties) under a key derived from it, and the selection is replaced
with a reference to that key:

  Save changes  ->  {{ 'SAVE_CHANGES' | translate }}
                    en.json: "SAVE_CHANGES": "Save changes"

Editors call lokey either with a source file and a byte range, or as a
filter that reads the selection on stdin and prints the replacement.

Commands:
  localize    Store the selection and replace it with a key reference
  key         Print or substitute the key derived from text
  session     Show or forget the remembered translation file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
			i18n.Init(uiLang)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs")
	root.PersistentFlags().StringVar(&uiLang, "lang", "", "Language of lokey's own messages (default: from environment)")

	root.AddCommand(
		newLocalizeCmd(),
		newKeyCmd(),
		newSessionCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			notify.Stderr().Error(err.Error())
		}
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, debug bool) {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func newConsole(cmd *cobra.Command) *notify.Console {
	w := cmd.ErrOrStderr()
	return &notify.Console{Out: w, Color: isTerminal(w)}
}

// ---------------------------------------------------------------------------
// localize
// ---------------------------------------------------------------------------

type localizeArgs struct {
	file      string
	span      string
	pick      bool
	noSession bool
}

func newLocalizeCmd() *cobra.Command {
	var a localizeArgs

	cmd := &cobra.Command{
		Use:   "localize [source-file]",
		Short: "Store the selection and replace it with a key reference",
		Long: `Store the selected text in the translation file and replace the
selection with the configured template.

With a source file, --range selects the bytes start:end of that file and
the file is edited in place. Without one, the selection is read from stdin
and the replacement is written to stdout; when localizing fails, the
original text is written back unchanged.

The translation file is taken from --file, the remembered choice for this
project, the "resource" setting of .lokey.yaml, or asked for, in that
order. --pick forgets the remembered choice first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocalize(cmd, args, a)
		},
	}

	cmd.Flags().StringVarP(&a.file, "file", "f", "", "Translation file to use (remembered for later runs)")
	cmd.Flags().StringVarP(&a.span, "range", "r", "", "Byte range start:end of the selection in source-file")
	cmd.Flags().BoolVar(&a.pick, "pick", false, "Choose the translation file again")
	cmd.Flags().BoolVar(&a.noSession, "no-session", false, "Do not read or remember the translation file choice")

	return cmd
}

func runLocalize(cmd *cobra.Command, args []string, a localizeArgs) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	console := newConsole(cmd)

	sel, stream, err := openSelection(cmd, args, a.span)
	if err != nil {
		return err
	}

	action := &localize.Action{
		Localizer: localize.New(cfg),
		Notify:    console,
	}
	if err := configureTarget(cmd, action, cfg, a, stream != nil); err != nil {
		restore(stream)
		return err
	}

	res, ok := action.Run(ctx, sel)
	if !ok {
		restore(stream)
		return errReported
	}
	log.Debug().Str("key", res.Key).Bool("written", res.Written).Msg("localized selection")
	return nil
}

func openSelection(cmd *cobra.Command, args []string, span string) (selection.Selection, *selection.Stream, error) {
	if len(args) == 0 {
		if span != "" {
			return nil, nil, fmt.Errorf("--range needs a source file")
		}
		s, err := selection.ReadStream(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}

	if span == "" {
		return nil, nil, fmt.Errorf("--range is required with a source file")
	}
	start, end, err := selection.ParseRange(span)
	if err != nil {
		return nil, nil, err
	}
	s, err := selection.OpenSpan(args[0], start, end)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

func configureTarget(cmd *cobra.Command, action *localize.Action, cfg *config.File, a localizeArgs, filter bool) error {
	if a.file != "" {
		action.Picker = picker.Static{Path: a.file}
		if a.noSession {
			return nil
		}
		sess, err := session.Open(rootDir)
		if err != nil {
			return err
		}
		if err := sess.Remember(a.file); err != nil {
			log.Warn().Err(err).Msg("could not remember resource file")
		}
		return nil
	}

	chain := picker.Chain{picker.Static{Path: cfg.ResourcePath(rootDir)}}
	if prompt, ok := promptPicker(cmd, cfg, filter); ok {
		chain = append(chain, prompt)
	}
	action.Picker = chain

	if a.noSession {
		return nil
	}
	sess, err := session.Open(rootDir)
	if err != nil {
		return err
	}
	if a.pick {
		if err := sess.Forget(); err != nil {
			return err
		}
		// --pick skips the configured default and asks.
		action.Picker = chain[1:]
	}
	action.Session = sess
	return nil
}

// promptPicker asks on the terminal. In filter mode stdin carries the
// selection, so the prompt goes through /dev/tty.
func promptPicker(cmd *cobra.Command, cfg *config.File, filter bool) (picker.Picker, bool) {
	in, out := cmd.InOrStdin(), cmd.ErrOrStderr()
	if filter {
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			log.Debug().Err(err).Msg("no terminal for the file prompt")
			return nil, false
		}
		in, out = tty, tty
	}
	return picker.Prompt{Root: rootDir, Patterns: cfg.Candidates, In: in, Out: out}, true
}

func restore(stream *selection.Stream) {
	if stream == nil {
		return
	}
	if err := stream.Restore(); err != nil {
		log.Error().Err(err).Msg("writing back the original selection")
	}
}

// ---------------------------------------------------------------------------
// key (derive only)
// ---------------------------------------------------------------------------

func newKeyCmd() *cobra.Command {
	var (
		span string
		fold bool
	)

	cmd := &cobra.Command{
		Use:   "key [text...]",
		Short: "Print or substitute the key derived from text",
		Long: `Derive the translation key for text.

With arguments, the key for the joined arguments is printed. With a source
file and --range, the selected bytes are replaced by their key. Without
either, the selection is read from stdin and its key written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			d := key.Deriver{FoldAccents: cfg.FoldAccents || fold}

			if span == "" && len(args) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), d.Derive(strings.Join(args, " ")))
				return nil
			}

			sel, stream, err := openSelection(cmd, args, span)
			if err != nil {
				return err
			}
			l := &localize.Localizer{Deriver: d}
			if _, err := l.Transform(sel); err != nil {
				restore(stream)
				newConsole(cmd).Error(localize.Message(err))
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&span, "range", "r", "", "Byte range start:end of the selection in a source file (first argument)")
	cmd.Flags().BoolVar(&fold, "fold-accents", false, "Strip accents before deriving the key")

	return cmd
}

// ---------------------------------------------------------------------------
// session
// ---------------------------------------------------------------------------

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or forget the remembered translation file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the remembered translation file for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.Open(rootDir)
			if err != nil {
				return err
			}
			if res := sess.Resource(); res != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res)
				return nil
			}
			newConsole(cmd).Info(i18n.Tf("No translation file remembered for %s.", sess.Root))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "forget",
		Short: "Forget the remembered translation file for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.Open(rootDir)
			if err != nil {
				return err
			}
			if err := sess.Forget(); err != nil {
				return err
			}
			newConsole(cmd).Success(i18n.Tf("Forgot the translation file for %s.", sess.Root))
			return nil
		},
	})

	return cmd
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lokey version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}
