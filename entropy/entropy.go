// Package entropy provides the random sources used by the cipher modes and
// the salt generator.
package entropy

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	hpqcrand "github.com/katzenpost/hpqc/rand"
	"github.com/katzenpost/hpqc/util"
	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

// WalkKeySize is the size of the key driving a Walk keystream.
const WalkKeySize = 32

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	Intn(n int) int
}

// Eraser is implemented by sources holding secret state.
type Eraser interface {
	Erase()
}

type secure struct{}

// Secure returns a Source backed by the system CSPRNG.
func Secure() Source {
	return secure{}
}

// Bytes returns n bytes from the system CSPRNG.
func Bytes(n int) []byte {
	return random.GetRandomBytes(uint32(n))
}

func (secure) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	// Rejection sampling keeps the result unbiased.
	bound := uint32(n)
	limit := math.MaxUint32 - math.MaxUint32%bound
	for {
		v := binary.BigEndian.Uint32(Bytes(4))
		if v < limit {
			return int(v % bound)
		}
	}
}

// Walk is a ChaCha20 keystream backed generator for the randomized mode's
// position walk. It is fast, reproducible from its key, and unrelated to
// the cipher key.
type Walk struct {
	key []byte
	rng *rand.Rand
}

// NewWalk returns a Walk keyed with fresh secure random bytes.
func NewWalk() (*Walk, error) {
	return NewDeterministic(Bytes(WalkKeySize))
}

// NewDeterministic returns a Walk keyed with key, which must be WalkKeySize
// bytes. The same key always yields the same sequence.
func NewDeterministic(key []byte) (*Walk, error) {
	if len(key) != WalkKeySize {
		return nil, fmt.Errorf("entropy: walk key is %d bytes, want %d", len(key), WalkKeySize)
	}
	w := &Walk{key: append([]byte{}, key...)}
	r, err := hpqcrand.NewDeterministicRandReader(w.key)
	if err != nil {
		return nil, err
	}
	w.rng = rand.New(r)
	return w, nil
}

// Intn implements Source.
func (w *Walk) Intn(n int) int {
	return w.rng.Intn(n)
}

// Erase wipes the walk key and drops the keystream.
func (w *Walk) Erase() {
	if w.key != nil {
		util.ExplicitBzero(w.key)
		w.key = nil
	}
	w.rng = nil
}
