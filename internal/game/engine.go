// internal/game/engine.go
//
// Core game engine for one player's salt identification rounds.
// Responsibilities:
//   - Start rounds: pick a secret salt and seed the log with two free clues.
//   - Run tests: flame test and reagent additions, each appending one log line.
//   - Evaluate guesses: correct only if both cation and anion match.
//   - Track state transitions: idle → flame/reagent (any order) → solved.
//
// Notes:
//   - The engine is not safe for concurrent use; hosts serialize calls
//     (see internal/store).
//   - A wrong guess leaves the round untouched and returns a Notice instead.
//   - Subscribers are called synchronously when a round is solved.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/salt-detective/internal/chem"
	"github.com/robalobadob/salt-detective/internal/pick"
)

var (
	ErrNoRound        = errors.New("no active round")
	ErrSolved         = errors.New("round already solved")
	ErrUnknownReagent = errors.New("unknown reagent")
	ErrUnknownIon     = errors.New("unknown ion")
)

// Engine owns the current round.
type Engine struct {
	catalog   *chem.Catalog
	picker    pick.Picker
	now       func() time.Time
	round     *round
	listeners []func(RoundSolved)
}

// round is the mutable per-round state. Replaced wholesale by StartRound.
type round struct {
	id              string
	secret          chem.SaltRecord
	log             []string
	view            View
	lastFlame       chem.Flame
	lastReagent     chem.Reagent
	lastPrecipitate chem.Precipitate
	solved          bool

	startedAt time.Time
	tests     int
	guesses   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now (used for solve durations).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs an engine over cat. A nil picker means pick.Random().
func New(cat *chem.Catalog, p pick.Picker, opts ...Option) *Engine {
	if p == nil {
		p = pick.Random()
	}
	e := &Engine{catalog: cat, picker: p, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Subscribe registers fn to be called every time a round is solved.
func (e *Engine) Subscribe(fn func(RoundSolved)) {
	e.listeners = append(e.listeners, fn)
}

// StartRound discards any current round and starts a new one.
func (e *Engine) StartRound() Snapshot {
	secret := e.catalog.At(e.picker.Pick(e.catalog.Len()))
	e.round = &round{
		id:     uuid.NewString(),
		secret: secret,
		log: []string{
			fmt.Sprintf("A sample of an unknown salt appears %s.", secret.SolidColor),
			fmt.Sprintf("Its solution looks %s.", secret.SolutionColor),
		},
		view:            ViewNone,
		lastFlame:       chem.FlameNone,
		lastPrecipitate: chem.PrecipitateNone,
		startedAt:       e.now(),
	}
	return e.round.snapshot()
}

// State returns the current round, or false if no round was started yet.
func (e *Engine) State() (Snapshot, bool) {
	if e.round == nil {
		return Snapshot{}, false
	}
	return e.round.snapshot(), true
}

// RunFlameTest holds the sample in a flame and records the color.
func (e *Engine) RunFlameTest() (Snapshot, error) {
	r, err := e.active()
	if err != nil {
		return Snapshot{}, err
	}
	flame := r.secret.Flame
	if flame == chem.FlameNone {
		r.append("Flame test is inconclusive.")
	} else {
		r.append(fmt.Sprintf("Flame test shows a %s flame.", flame))
	}
	r.view = ViewFlame
	r.lastFlame = flame
	r.tests++
	return r.snapshot(), nil
}

// AddReagent adds reagent to the solution and records what happens.
func (e *Engine) AddReagent(reagent chem.Reagent) (Snapshot, error) {
	if !reagent.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownReagent, reagent)
	}
	r, err := e.active()
	if err != nil {
		return Snapshot{}, err
	}
	outcome := r.secret.Outcome(reagent)
	if outcome == chem.PrecipitateNone {
		r.append(fmt.Sprintf("Adding %s: no visible reaction.", reagent))
	} else {
		r.append(fmt.Sprintf("Adding %s: a %s precipitate forms.", reagent, outcome))
	}
	r.view = ViewReagent
	r.lastReagent = reagent
	r.lastPrecipitate = outcome
	r.tests++
	return r.snapshot(), nil
}

// SubmitGuess checks a cation/anion pair against the secret.
// Both halves must match; there is no partial credit and no hint.
func (e *Engine) SubmitGuess(cation chem.Cation, anion chem.Anion) (GuessResult, error) {
	if !cation.Valid() {
		return GuessResult{}, fmt.Errorf("%w: cation %q", ErrUnknownIon, cation)
	}
	if !anion.Valid() {
		return GuessResult{}, fmt.Errorf("%w: anion %q", ErrUnknownIon, anion)
	}
	r, err := e.active()
	if err != nil {
		return GuessResult{}, err
	}
	r.guesses++

	if cation != r.secret.Cation || anion != r.secret.Anion {
		return GuessResult{
			Round:  r.snapshot(),
			Notice: &Notice{Message: wrongGuessMessage, Duration: wrongGuessDuration},
		}, nil
	}

	r.solved = true
	ev := RoundSolved{
		RoundID:  r.id,
		Salt:     r.secret,
		Tests:    r.tests,
		Guesses:  r.guesses,
		Duration: e.now().Sub(r.startedAt),
	}
	for _, fn := range e.listeners {
		fn(ev)
	}
	return GuessResult{Correct: true, Round: r.snapshot()}, nil
}

// active returns the round if one exists and is still open.
func (e *Engine) active() (*round, error) {
	if e.round == nil {
		return nil, ErrNoRound
	}
	if e.round.solved {
		return nil, ErrSolved
	}
	return e.round, nil
}

func (r *round) append(line string) { r.log = append(r.log, line) }

func (r *round) snapshot() Snapshot {
	s := Snapshot{
		RoundID:         r.id,
		Log:             append([]string(nil), r.log...),
		View:            r.view,
		LastFlame:       r.lastFlame,
		LastReagent:     r.lastReagent,
		LastPrecipitate: r.lastPrecipitate,
		Solved:          r.solved,
	}
	if r.solved {
		s.Reveal = &Reveal{Name: r.secret.Name, Cation: r.secret.Cation, Anion: r.secret.Anion}
	}
	return s
}
