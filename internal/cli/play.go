package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/salt-detective/internal/chem"
	"github.com/robalobadob/salt-detective/internal/game"
	"github.com/robalobadob/salt-detective/internal/pick"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Seed string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play rounds interactively. Commands:

  new                      draw a new unknown salt
  flame                    run a flame test
  add <AgNO3|BaCl2|NaOH>   add a reagent
  guess <cation> <anion>   e.g. guess Na+ Cl-
  log                      show the full experiment log
  ions                     list the valid cations, anions and reagents
  help                     show this help
  quit                     leave

With --seed the sequence of salts is reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := chem.Load(opts.Config.CatalogFile)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			var p pick.Picker
			if opts.Seed != "" {
				p = pick.Seeded(opts.Seed)
			}
			return newSession(game.New(cat, p), cmd.OutOrStdout()).run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "seed for a reproducible sequence of salts")

	return cmd
}

// session is the terminal host around one engine.
type session struct {
	e     *game.Engine
	out   io.Writer
	shown int // log lines already printed
}

func newSession(e *game.Engine, out io.Writer) *session {
	return &session{e: e, out: out}
}

func (s *session) run(in io.Reader) error {
	fmt.Fprintln(s.out, "Salt Detective. Type 'help' for commands.")
	s.newRound()

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := s.dispatch(strings.ToLower(fields[0]), fields[1:]); quit {
			return nil
		}
	}
}

// dispatch runs one command and reports whether the player wants to leave.
func (s *session) dispatch(name string, args []string) bool {
	switch name {
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Bye.")
		return true
	case "help", "?":
		s.help()
	case "new":
		s.newRound()
	case "flame":
		snap, err := s.e.RunFlameTest()
		s.report(snap, err)
	case "add":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: add <AgNO3|BaCl2|NaOH>")
			return false
		}
		r, err := chem.ParseReagent(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "Unknown reagent %q. Try one of: %s\n", args[0], joinAll(chem.Reagents()))
			return false
		}
		snap, err := s.e.AddReagent(r)
		s.report(snap, err)
	case "guess":
		s.guess(args)
	case "log":
		if snap, ok := s.e.State(); ok {
			s.shown = 0
			s.printNew(snap)
		}
	case "ions":
		fmt.Fprintf(s.out, "Cations:  %s\n", joinAll(chem.Cations()))
		fmt.Fprintf(s.out, "Anions:   %s\n", joinAll(chem.Anions()))
		fmt.Fprintf(s.out, "Reagents: %s\n", joinAll(chem.Reagents()))
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type 'help'.\n", name)
	}
	return false
}

func (s *session) newRound() {
	snap := s.e.StartRound()
	s.shown = 0
	fmt.Fprintln(s.out, "A new sample is on the bench.")
	s.printNew(snap)
}

func (s *session) guess(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: guess <cation> <anion>   e.g. guess Na+ Cl-")
		return
	}
	c, err := chem.ParseCation(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Unknown cation %q. Try one of: %s\n", args[0], joinAll(chem.Cations()))
		return
	}
	a, err := chem.ParseAnion(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Unknown anion %q. Try one of: %s\n", args[1], joinAll(chem.Anions()))
		return
	}
	res, err := s.e.SubmitGuess(c, a)
	if err != nil {
		s.report(game.Snapshot{}, err)
		return
	}
	if !res.Correct {
		// shown once; the terminal has no timer to clear it
		fmt.Fprintln(s.out, res.Notice.Message)
		return
	}
	rv := res.Round.Reveal
	fmt.Fprintf(s.out, "Correct! The salt was %s (%s + %s). Type 'new' to play again.\n", rv.Name, rv.Cation, rv.Anion)
}

// report prints the outcome of a test action.
func (s *session) report(snap game.Snapshot, err error) {
	switch {
	case errors.Is(err, game.ErrNoRound):
		fmt.Fprintln(s.out, "No sample yet. Type 'new'.")
	case errors.Is(err, game.ErrSolved):
		fmt.Fprintln(s.out, "This sample is already identified. Type 'new' for another.")
	case err != nil:
		fmt.Fprintf(s.out, "error: %v\n", err)
	default:
		s.printNew(snap)
	}
}

func (s *session) printNew(snap game.Snapshot) {
	for _, line := range snap.Log[s.shown:] {
		fmt.Fprintf(s.out, "• %s\n", line)
	}
	s.shown = len(snap.Log)
}

func (s *session) help() {
	fmt.Fprintln(s.out, "Commands: new, flame, add <reagent>, guess <cation> <anion>, log, ions, help, quit")
}

func joinAll[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
