// internal/chem/types.go
//
// Closed enumerations for the salt catalog.
// Defines:
//   - Cation / Anion: the ions a salt is made of (and the guess choices).
//   - Reagent: the three test reagents a player can add.
//   - Flame: flame test colors ("none" = inconclusive).
//   - Precipitate: reagent outcomes ("none" = no visible reaction).
//
// Every type has a Parse function; values outside the set are rejected
// with ErrUnknownValue so callers never carry free-form strings around.

package chem

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a string is outside a closed set.
var ErrUnknownValue = errors.New("unknown value")

// Cation is a positively charged ion.
type Cation string

const (
	Sodium    Cation = "Na+"
	Potassium Cation = "K+"
	Calcium   Cation = "Ca2+"
	Magnesium Cation = "Mg2+"
	Copper    Cation = "Cu2+"
	Iron      Cation = "Fe3+"
	Cobalt    Cation = "Co2+"
	Nickel    Cation = "Ni2+"
	Manganese Cation = "Mn2+"
	Barium    Cation = "Ba2+"
)

// Anion is a negatively charged ion.
type Anion string

const (
	Chloride     Anion = "Cl-"
	Bromide      Anion = "Br-"
	Iodide       Anion = "I-"
	Sulfate      Anion = "SO4^2-"
	Nitrate      Anion = "NO3-"
	Dichromate   Anion = "Cr2O7^2-"
	Permanganate Anion = "MnO4-"
)

// Reagent is one of the three test reagents.
type Reagent string

const (
	SilverNitrate   Reagent = "AgNO3" // first reagent
	BariumChloride  Reagent = "BaCl2" // second reagent
	SodiumHydroxide Reagent = "NaOH"  // third reagent
)

// Flame is the color observed in a flame test.
type Flame string

const (
	FlameNone   Flame = "none"
	FlameOrange Flame = "orange"
	FlameLilac  Flame = "lilac"
	FlameGreen  Flame = "green"
)

// Precipitate is the color of the solid formed when a reagent is added.
type Precipitate string

const (
	PrecipitateNone   Precipitate = "none"
	PrecipitateWhite  Precipitate = "white"
	PrecipitateCream  Precipitate = "cream"
	PrecipitateYellow Precipitate = "yellow"
	PrecipitateBrown  Precipitate = "brown"
	PrecipitateBlue   Precipitate = "blue"
	PrecipitateGreen  Precipitate = "green"
	PrecipitatePink   Precipitate = "pink"
)

var (
	// Ba2+ is guessable too: without it Barium Sulfate could never be solved.
	cations = []Cation{Sodium, Potassium, Calcium, Magnesium, Copper, Iron, Cobalt, Nickel, Manganese, Barium}
	anions  = []Anion{Chloride, Bromide, Iodide, Sulfate, Nitrate, Dichromate, Permanganate}

	reagents = []Reagent{SilverNitrate, BariumChloride, SodiumHydroxide}

	flames       = []Flame{FlameNone, FlameOrange, FlameLilac, FlameGreen}
	precipitates = []Precipitate{
		PrecipitateNone, PrecipitateWhite, PrecipitateCream, PrecipitateYellow,
		PrecipitateBrown, PrecipitateBlue, PrecipitateGreen, PrecipitatePink,
	}
)

// Cations returns the guessable cations in display order.
func Cations() []Cation { return append([]Cation(nil), cations...) }

// Anions returns the guessable anions in display order.
func Anions() []Anion { return append([]Anion(nil), anions...) }

// Reagents returns the reagents in button order (first, second, third).
func Reagents() []Reagent { return append([]Reagent(nil), reagents...) }

// Valid reports whether c is one of the known cations.
func (c Cation) Valid() bool { return contains(cations, c) }

// Valid reports whether a is one of the known anions.
func (a Anion) Valid() bool { return contains(anions, a) }

// Valid reports whether r is one of the three reagents.
func (r Reagent) Valid() bool { return contains(reagents, r) }

// Valid reports whether f is a known flame color.
func (f Flame) Valid() bool { return contains(flames, f) }

// Valid reports whether p is a known precipitate color.
func (p Precipitate) Valid() bool { return contains(precipitates, p) }

func ParseCation(s string) (Cation, error) { return parse[Cation]("cation", s) }

func ParseAnion(s string) (Anion, error) { return parse[Anion]("anion", s) }

func ParseReagent(s string) (Reagent, error) { return parse[Reagent]("reagent", s) }

func ParseFlame(s string) (Flame, error) { return parse[Flame]("flame", s) }

func ParsePrecipitate(s string) (Precipitate, error) { return parse[Precipitate]("precipitate", s) }

type enum interface {
	~string
	Valid() bool
}

func parse[T enum](kind, s string) (T, error) {
	v := T(s)
	if !v.Valid() {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", kind, s, ErrUnknownValue)
	}
	return v, nil
}

func contains[T comparable](set []T, v T) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
