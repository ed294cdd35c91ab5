package chem

// SaltRecord is one catalog entry. It is a plain value: copies handed
// out by the Catalog cannot change the catalog itself.
type SaltRecord struct {
	Name          string
	Cation        Cation
	Anion         Anion
	SolidColor    string
	SolutionColor string
	Flame         Flame

	outcomes [3]Precipitate // indexed by reagent order
}

// NewSaltRecord builds a record with a complete reagent table.
// Every reagent must appear in outcomes; anything missing or unknown is an error.
func NewSaltRecord(name string, cation Cation, anion Anion, solid, solution string, flame Flame, outcomes map[Reagent]Precipitate) (SaltRecord, error) {
	s := SaltRecord{
		Name:          name,
		Cation:        cation,
		Anion:         anion,
		SolidColor:    solid,
		SolutionColor: solution,
		Flame:         flame,
	}
	if err := s.setOutcomes(outcomes); err != nil {
		return SaltRecord{}, err
	}
	if err := s.validate(); err != nil {
		return SaltRecord{}, err
	}
	return s, nil
}

// Outcome returns the precipitate formed when r is added to a solution of s.
func (s SaltRecord) Outcome(r Reagent) Precipitate {
	i := reagentIndex(r)
	if i < 0 {
		return PrecipitateNone
	}
	return s.outcomes[i]
}

// Formula renders the identity as "cation + anion", e.g. "Na+ + Cl-".
func (s SaltRecord) Formula() string {
	return string(s.Cation) + " + " + string(s.Anion)
}

func (s *SaltRecord) setOutcomes(m map[Reagent]Precipitate) error {
	for r := range m {
		if !r.Valid() {
			return &RecordError{Salt: s.Name, Field: "reagents", Err: ErrUnknownValue, Value: string(r)}
		}
	}
	for i, r := range reagents {
		p, ok := m[r]
		if !ok {
			return &RecordError{Salt: s.Name, Field: "reagents." + string(r), Err: ErrMissingOutcome}
		}
		if !p.Valid() {
			return &RecordError{Salt: s.Name, Field: "reagents." + string(r), Err: ErrUnknownValue, Value: string(p)}
		}
		s.outcomes[i] = p
	}
	return nil
}

func (s SaltRecord) validate() error {
	switch {
	case s.Name == "":
		return &RecordError{Field: "name", Err: ErrMissingField}
	case !s.Cation.Valid():
		return &RecordError{Salt: s.Name, Field: "cation", Err: ErrUnknownValue, Value: string(s.Cation)}
	case !s.Anion.Valid():
		return &RecordError{Salt: s.Name, Field: "anion", Err: ErrUnknownValue, Value: string(s.Anion)}
	case !s.Flame.Valid():
		return &RecordError{Salt: s.Name, Field: "flame", Err: ErrUnknownValue, Value: string(s.Flame)}
	case s.SolidColor == "":
		return &RecordError{Salt: s.Name, Field: "solid", Err: ErrMissingField}
	case s.SolutionColor == "":
		return &RecordError{Salt: s.Name, Field: "solution", Err: ErrMissingField}
	}
	return nil
}

func reagentIndex(r Reagent) int {
	for i, x := range reagents {
		if x == r {
			return i
		}
	}
	return -1
}
