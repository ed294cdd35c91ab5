// internal/chem/catalog.go
//
// The salt catalog: a fixed, read-only list of SaltRecords.
//
// Sources:
//   1. An explicit YAML file (CATALOG_FILE / --catalog).
//   2. Otherwise the embedded default from assets/salts.yaml, parsed once.
//
// Loading is all-or-nothing: every record is checked against the closed
// enumerations, names must be unique and every reagent needs an outcome.
// A catalog that loads is therefore total and never changes afterwards.

package chem

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/salt-detective/assets"
)

var (
	ErrMissingField   = errors.New("missing field")
	ErrMissingOutcome = errors.New("missing reagent outcome")
	ErrDuplicateName  = errors.New("duplicate salt name")
	ErrEmptyCatalog   = errors.New("catalog is empty")
)

// RecordError points at the catalog entry and field that failed validation.
type RecordError struct {
	Salt  string
	Field string
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	msg := "catalog"
	if e.Salt != "" {
		msg += fmt.Sprintf(" %q", e.Salt)
	}
	msg += ": " + e.Field
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	return msg + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }

// Catalog is an immutable, indexable set of salts.
type Catalog struct {
	salts  []SaltRecord
	byName map[string]int
}

// New validates salts and builds a Catalog from them.
func New(salts []SaltRecord) (*Catalog, error) {
	if len(salts) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		salts:  make([]SaltRecord, 0, len(salts)),
		byName: make(map[string]int, len(salts)),
	}
	for _, s := range salts {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, &RecordError{Salt: s.Name, Field: "name", Err: ErrDuplicateName}
		}
		c.byName[s.Name] = len(c.salts)
		c.salts = append(c.salts, s)
	}
	return c, nil
}

// Len returns the number of salts.
func (c *Catalog) Len() int { return len(c.salts) }

// At returns the i-th salt. It panics if i is out of range, like a slice.
func (c *Catalog) At(i int) SaltRecord { return c.salts[i] }

// Salts returns a copy of all records in catalog order.
func (c *Catalog) Salts() []SaltRecord { return append([]SaltRecord(nil), c.salts...) }

// Lookup finds a salt by display name.
func (c *Catalog) Lookup(name string) (SaltRecord, bool) {
	i, ok := c.byName[name]
	if !ok {
		return SaltRecord{}, false
	}
	return c.salts[i], true
}

// --- YAML loading ---

type catalogFile struct {
	Salts []saltEntry `yaml:"salts"`
}

type saltEntry struct {
	Name     string            `yaml:"name"`
	Cation   string            `yaml:"cation"`
	Anion    string            `yaml:"anion"`
	Solid    string            `yaml:"solid"`
	Solution string            `yaml:"solution"`
	Flame    string            `yaml:"flame"`
	Reagents map[string]string `yaml:"reagents"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	salts := make([]SaltRecord, 0, len(f.Salts))
	for _, e := range f.Salts {
		s, err := e.record()
		if err != nil {
			return nil, err
		}
		salts = append(salts, s)
	}
	return New(salts)
}

func (e saltEntry) record() (SaltRecord, error) {
	outcomes := make(map[Reagent]Precipitate, len(e.Reagents))
	for r, p := range e.Reagents {
		outcomes[Reagent(r)] = Precipitate(p)
	}
	return NewSaltRecord(e.Name, Cation(e.Cation), Anion(e.Anion), e.Solid, e.Solution, Flame(e.Flame), outcomes)
}

// LoadFile reads and parses a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := assets.Catalog()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}

// Load returns the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
