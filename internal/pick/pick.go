// internal/pick/pick.go
//
// Random sources for choosing the secret salt.
// Provides:
//   - Random(): uniform crypto/rand picks, the production default.
//   - Seeded(seed): deterministic picks via HMAC(seed, counter), used for
//     reproducible practice rounds and tests.
//
// Both satisfy "uniform over n items, independent across calls".

package pick

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/big"
	mrand "math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"
)

// Picker returns an index in [0, n). Callers guarantee n > 0.
type Picker interface {
	Pick(n int) int
}

// PickerFunc adapts a plain function to Picker.
type PickerFunc func(n int) int

func (f PickerFunc) Pick(n int) int { return f(n) }

type cryptoPicker struct {
	src io.Reader
}

// Random returns a Picker backed by crypto/rand. If the system source ever
// fails, picks fall back to math/rand/v2 so they stay uniform.
func Random() Picker { return cryptoPicker{src: rand.Reader} }

func (p cryptoPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	nBig, err := rand.Int(p.src, big.NewInt(int64(n)))
	if err != nil {
		log.Warn().Err(err).Msg("crypto/rand failed, using math/rand")
		return mrand.IntN(n)
	}
	return int(nBig.Int64())
}

// seeded derives each pick from HMAC-SHA256(seed, counter).
type seeded struct {
	mu   sync.Mutex
	key  []byte
	next uint64
}

// Seeded returns a deterministic Picker: the same seed yields the same
// sequence of picks.
func Seeded(seed string) Picker {
	return &seeded{key: []byte(seed)}
}

func (s *seeded) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	ctr := s.next
	s.next++
	s.mu.Unlock()

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], ctr)
	h := hmac.New(sha256.New, s.key)
	h.Write(msg[:])
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Fixed always returns i (clamped into range). Handy for hosts that
// want a specific sample.
func Fixed(i int) Picker {
	return PickerFunc(func(n int) int {
		if i < 0 || i >= n {
			return 0
		}
		return i
	})
}
