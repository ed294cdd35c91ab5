package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/salt-detective/internal/chem"
	"github.com/robalobadob/salt-detective/internal/pick"
)

func defaultCatalog(t *testing.T) *chem.Catalog {
	t.Helper()
	cat, err := chem.Default()
	require.NoError(t, err)
	return cat
}

// engineWith returns an engine whose next round uses the named salt.
func engineWith(t *testing.T, name string, opts ...Option) *Engine {
	t.Helper()
	cat := defaultCatalog(t)
	for i, s := range cat.Salts() {
		if s.Name == name {
			return New(cat, pick.Fixed(i), opts...)
		}
	}
	t.Fatalf("salt %q not in catalog", name)
	return nil
}

func TestStateBeforeFirstRound(t *testing.T) {
	e := New(defaultCatalog(t), nil)
	_, ok := e.State()
	assert.False(t, ok)

	_, err := e.RunFlameTest()
	assert.ErrorIs(t, err, ErrNoRound)

	_, err = e.AddReagent(chem.SilverNitrate)
	assert.ErrorIs(t, err, ErrNoRound)

	_, err = e.SubmitGuess(chem.Sodium, chem.Chloride)
	assert.ErrorIs(t, err, ErrNoRound)
}

func TestStartRoundSeedsCluesForEverySalt(t *testing.T) {
	cat := defaultCatalog(t)
	for i, s := range cat.Salts() {
		t.Run(s.Name, func(t *testing.T) {
			e := New(cat, pick.Fixed(i))
			snap := e.StartRound()

			require.Len(t, snap.Log, 2)
			assert.Equal(t, fmt.Sprintf("A sample of an unknown salt appears %s.", s.SolidColor), snap.Log[0])
			assert.Equal(t, fmt.Sprintf("Its solution looks %s.", s.SolutionColor), snap.Log[1])
			assert.Equal(t, ViewNone, snap.View)
			assert.Equal(t, chem.FlameNone, snap.LastFlame)
			assert.Empty(t, snap.LastReagent)
			assert.Equal(t, chem.PrecipitateNone, snap.LastPrecipitate)
			assert.False(t, snap.Solved)
			assert.Nil(t, snap.Reveal)
			assert.NotEmpty(t, snap.RoundID)
		})
	}
}

func TestFlameTest(t *testing.T) {
	cat := defaultCatalog(t)
	for i, s := range cat.Salts() {
		t.Run(s.Name, func(t *testing.T) {
			e := New(cat, pick.Fixed(i))
			e.StartRound()

			snap, err := e.RunFlameTest()
			require.NoError(t, err)
			require.Len(t, snap.Log, 3)

			last := snap.Log[2]
			if s.Flame == chem.FlameNone {
				assert.Equal(t, "Flame test is inconclusive.", last)
			} else {
				assert.Equal(t, fmt.Sprintf("Flame test shows a %s flame.", s.Flame), last)
			}
			assert.Equal(t, ViewFlame, snap.View)
			assert.Equal(t, s.Flame, snap.LastFlame)
			assert.False(t, snap.Solved)
		})
	}
}

func TestAddReagentForEverySaltAndReagent(t *testing.T) {
	cat := defaultCatalog(t)
	for i, s := range cat.Salts() {
		for _, r := range chem.Reagents() {
			t.Run(s.Name+"/"+string(r), func(t *testing.T) {
				e := New(cat, pick.Fixed(i))
				e.StartRound()

				snap, err := e.AddReagent(r)
				require.NoError(t, err)
				require.Len(t, snap.Log, 3)

				want := s.Outcome(r)
				if want == chem.PrecipitateNone {
					assert.Equal(t, fmt.Sprintf("Adding %s: no visible reaction.", r), snap.Log[2])
				} else {
					assert.Equal(t, fmt.Sprintf("Adding %s: a %s precipitate forms.", r, want), snap.Log[2])
				}
				assert.Equal(t, ViewReagent, snap.View)
				assert.Equal(t, r, snap.LastReagent)
				assert.Equal(t, want, snap.LastPrecipitate)
			})
		}
	}
}

func TestAddReagentOverwritesLastFields(t *testing.T) {
	e := engineWith(t, "Copper(II) Sulfate")
	e.StartRound()

	_, err := e.AddReagent(chem.SodiumHydroxide)
	require.NoError(t, err)
	snap, err := e.AddReagent(chem.SilverNitrate)
	require.NoError(t, err)

	assert.Equal(t, chem.SilverNitrate, snap.LastReagent)
	assert.Equal(t, chem.PrecipitateNone, snap.LastPrecipitate)
	assert.Equal(t, []string{
		"A sample of an unknown salt appears blue.",
		"Its solution looks blue.",
		"Adding NaOH: a blue precipitate forms.",
		"Adding AgNO3: no visible reaction.",
	}, snap.Log)
}

func TestAddReagentRejectsUnknown(t *testing.T) {
	e := engineWith(t, "Sodium Chloride")
	e.StartRound()

	_, err := e.AddReagent("HCl")
	assert.ErrorIs(t, err, ErrUnknownReagent)

	snap, _ := e.State()
	assert.Len(t, snap.Log, 2)
	assert.Equal(t, ViewNone, snap.View)
}

func TestLogGrowsWithEveryTest(t *testing.T) {
	e := engineWith(t, "Potassium Bromide")
	prev := e.StartRound().Log

	steps := []func() (Snapshot, error){
		e.RunFlameTest,
		e.RunFlameTest,
		func() (Snapshot, error) { return e.AddReagent(chem.SilverNitrate) },
		func() (Snapshot, error) { return e.AddReagent(chem.SilverNitrate) },
		func() (Snapshot, error) { return e.AddReagent(chem.BariumChloride) },
		e.RunFlameTest,
	}
	for i, step := range steps {
		snap, err := step()
		require.NoError(t, err)
		require.Len(t, snap.Log, len(prev)+1, "step %d", i)
		assert.Equal(t, prev, snap.Log[:len(prev)], "step %d reordered the log", i)
		prev = snap.Log
	}
}

func TestSodiumChlorideExample(t *testing.T) {
	e := engineWith(t, "Sodium Chloride")
	e.StartRound()

	snap, err := e.RunFlameTest()
	require.NoError(t, err)
	assert.Equal(t, "Flame test shows a orange flame.", snap.Log[len(snap.Log)-1])

	snap, err = e.AddReagent(chem.SilverNitrate)
	require.NoError(t, err)
	assert.Equal(t, "Adding AgNO3: a white precipitate forms.", snap.Log[len(snap.Log)-1])

	res, err := e.SubmitGuess(chem.Potassium, chem.Chloride)
	require.NoError(t, err)
	assert.False(t, res.Correct)

	res, err = e.SubmitGuess(chem.Sodium, chem.Chloride)
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestBariumSulfateFlameIsInconclusive(t *testing.T) {
	e := engineWith(t, "Barium Sulfate")
	e.StartRound()

	snap, err := e.RunFlameTest()
	require.NoError(t, err)
	assert.Equal(t, "Flame test is inconclusive.", snap.Log[2])
	assert.Equal(t, chem.FlameNone, snap.LastFlame)
	assert.Equal(t, ViewFlame, snap.View)
}

func TestSubmitGuessRequiresBothHalves(t *testing.T) {
	cat := defaultCatalog(t)
	for i, s := range cat.Salts() {
		t.Run(s.Name, func(t *testing.T) {
			e := New(cat, pick.Fixed(i))
			e.StartRound()

			for _, c := range chem.Cations() {
				for _, a := range chem.Anions() {
					if c == s.Cation && a == s.Anion {
						continue
					}
					res, err := e.SubmitGuess(c, a)
					require.NoError(t, err)
					require.False(t, res.Correct, "%s + %s", c, a)
				}
			}

			res, err := e.SubmitGuess(s.Cation, s.Anion)
			require.NoError(t, err)
			assert.True(t, res.Correct)
		})
	}
}

func TestWrongGuessLeavesRoundUntouched(t *testing.T) {
	e := engineWith(t, "Cobalt(II) Chloride")
	e.StartRound()
	before, err := e.RunFlameTest()
	require.NoError(t, err)

	// right cation, wrong anion: no hint about which half was right
	res, err := e.SubmitGuess(chem.Cobalt, chem.Bromide)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	require.NotNil(t, res.Notice)
	assert.Equal(t, "Not quite, try another test!", res.Notice.Message)
	assert.Equal(t, 2*time.Second, res.Notice.Duration)

	after, ok := e.State()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, before, res.Round)
	assert.Nil(t, after.Reveal)
}

func TestCorrectGuessSolvesAndReveals(t *testing.T) {
	e := engineWith(t, "Nickel(II) Sulfate")
	e.StartRound()

	res, err := e.SubmitGuess(chem.Nickel, chem.Sulfate)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Nil(t, res.Notice)
	assert.True(t, res.Round.Solved)
	require.NotNil(t, res.Round.Reveal)
	assert.Equal(t, Reveal{Name: "Nickel(II) Sulfate", Cation: chem.Nickel, Anion: chem.Sulfate}, *res.Round.Reveal)
	assert.Len(t, res.Round.Log, 2, "a guess never writes to the log")
}

func TestSolvedIsTerminal(t *testing.T) {
	e := engineWith(t, "Sodium Iodide")
	e.StartRound()
	_, err := e.SubmitGuess(chem.Sodium, chem.Iodide)
	require.NoError(t, err)

	_, err = e.RunFlameTest()
	assert.ErrorIs(t, err, ErrSolved)
	_, err = e.AddReagent(chem.SilverNitrate)
	assert.ErrorIs(t, err, ErrSolved)
	_, err = e.SubmitGuess(chem.Potassium, chem.Iodide)
	assert.ErrorIs(t, err, ErrSolved)

	snap, _ := e.State()
	assert.True(t, snap.Solved)
	assert.Len(t, snap.Log, 2)
}

func TestSubmitGuessRejectsUnknownIons(t *testing.T) {
	e := engineWith(t, "Sodium Chloride")
	e.StartRound()

	_, err := e.SubmitGuess("Cl-", chem.Chloride)
	assert.ErrorIs(t, err, ErrUnknownIon)
	_, err = e.SubmitGuess(chem.Sodium, "Na+")
	assert.ErrorIs(t, err, ErrUnknownIon)

	snap, _ := e.State()
	assert.False(t, snap.Solved)
}

func TestStartRoundResets(t *testing.T) {
	e := engineWith(t, "Calcium Chloride")
	first := e.StartRound()
	_, err := e.RunFlameTest()
	require.NoError(t, err)
	_, err = e.AddReagent(chem.SodiumHydroxide)
	require.NoError(t, err)
	_, err = e.SubmitGuess(chem.Calcium, chem.Chloride)
	require.NoError(t, err)

	second := e.StartRound()
	assert.False(t, second.Solved)
	assert.Nil(t, second.Reveal)
	assert.Len(t, second.Log, 2)
	assert.Equal(t, ViewNone, second.View)
	assert.Empty(t, second.LastReagent)
	assert.Equal(t, chem.PrecipitateNone, second.LastPrecipitate)
	assert.NotEqual(t, first.RoundID, second.RoundID)

	// same salt again is allowed: sampling is with replacement
	res, err := e.SubmitGuess(chem.Calcium, chem.Chloride)
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestStartRoundUsesPicker(t *testing.T) {
	cat := defaultCatalog(t)
	var seenN []int
	p := pick.PickerFunc(func(n int) int {
		seenN = append(seenN, n)
		return n - 1
	})
	e := New(cat, p)
	e.StartRound()
	e.StartRound()

	assert.Equal(t, []int{cat.Len(), cat.Len()}, seenN)
	_, err := e.SubmitGuess(cat.At(cat.Len()-1).Cation, cat.At(cat.Len()-1).Anion)
	require.NoError(t, err)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := engineWith(t, "Sodium Chloride")
	snap := e.StartRound()
	snap.Log[0] = "tampered"
	snap.Log = append(snap.Log, "extra")

	again, _ := e.State()
	assert.Len(t, again.Log, 2)
	assert.NotEqual(t, "tampered", again.Log[0])
}

func TestSubscribersSeeSolvedRounds(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start
	e := engineWith(t, "Potassium Permanganate", WithClock(func() time.Time { return now }))

	var got []RoundSolved
	e.Subscribe(func(ev RoundSolved) { got = append(got, ev) })

	snap := e.StartRound()
	_, err := e.RunFlameTest()
	require.NoError(t, err)
	_, err = e.AddReagent(chem.BariumChloride)
	require.NoError(t, err)
	_, err = e.SubmitGuess(chem.Sodium, chem.Permanganate)
	require.NoError(t, err)
	assert.Empty(t, got, "wrong guesses do not publish")

	now = start.Add(90 * time.Second)
	_, err = e.SubmitGuess(chem.Potassium, chem.Permanganate)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, snap.RoundID, got[0].RoundID)
	assert.Equal(t, "Potassium Permanganate", got[0].Salt.Name)
	assert.Equal(t, 2, got[0].Tests)
	assert.Equal(t, 2, got[0].Guesses)
	assert.Equal(t, 90*time.Second, got[0].Duration)
}

func TestNoticeExpiry(t *testing.T) {
	n := Notice{Message: "x", Duration: 2 * time.Second}
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(2*time.Second), n.ExpiresAt(at))
}

func TestErrorsWrapSentinels(t *testing.T) {
	e := engineWith(t, "Sodium Chloride")
	e.StartRound()
	_, err := e.AddReagent("H2O")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownReagent))
	assert.Contains(t, err.Error(), `"H2O"`)
}
