// internal/game/types.go
//
// Core type definitions for the salt identification engine.
// Defines:
//   - View: which test result a host should currently show.
//   - Snapshot: read-only copy of a round handed to hosts.
//   - Notice: short-lived feedback that is never part of the log.
//   - GuessResult / RoundSolved: outcomes of a guess.

package game

import (
	"time"

	"github.com/robalobadob/salt-detective/internal/chem"
)

// View is a rendering hint derived from the last action.
type View string

const (
	ViewNone    View = "none"
	ViewFlame   View = "flame"
	ViewReagent View = "reagent"
)

// Snapshot is the host-facing view of the current round.
// It is a copy; changing it has no effect on the engine.
type Snapshot struct {
	RoundID         string           `json:"roundId"`
	Log             []string         `json:"log"`
	View            View             `json:"view"`
	LastFlame       chem.Flame       `json:"lastFlame"`
	LastReagent     chem.Reagent     `json:"lastReagent,omitempty"`
	LastPrecipitate chem.Precipitate `json:"lastPrecipitate"`
	Solved          bool             `json:"solved"`
	Reveal          *Reveal          `json:"reveal,omitempty"` // set only once solved
}

// Reveal is the secret's identity, disclosed after a correct guess.
type Reveal struct {
	Name   string      `json:"name"`
	Cation chem.Cation `json:"cation"`
	Anion  chem.Anion  `json:"anion"`
}

// Notice is ephemeral feedback. Hosts show it for Duration and then drop it.
type Notice struct {
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
}

// ExpiresAt returns when a notice shown at t should disappear.
func (n Notice) ExpiresAt(t time.Time) time.Time { return t.Add(n.Duration) }

// GuessResult is returned by SubmitGuess.
type GuessResult struct {
	Correct bool
	Round   Snapshot
	Notice  *Notice // non-nil only for a wrong guess
}

// RoundSolved is published to subscribers when a round is solved.
type RoundSolved struct {
	RoundID  string
	Salt     chem.SaltRecord
	Tests    int // flame tests + reagent additions
	Guesses  int // including the correct one
	Duration time.Duration
}

const (
	wrongGuessMessage  = "Not quite, try another test!"
	wrongGuessDuration = 2 * time.Second
)
