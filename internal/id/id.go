// Package id issues time-sortable identifiers for trade records.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Source issues ULIDs that never go backwards. Each run should own one so
// its IDs follow its own clock; concurrent use is safe.
type Source struct {
	mu   sync.Mutex
	mono io.Reader
	last ulid.ULID
}

func NewSource() *Source {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// NewAt returns a ULID stamped with t. Simulated runs stamp records with
// the bar time so IDs sort in replay order. A t earlier than the previous
// call on this source is clamped to the previous timestamp.
func (s *Source) NewAt(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := ulid.Timestamp(t.UTC())
	if t.IsZero() || ms < s.last.Time() {
		ms = s.last.Time()
	}

	id, err := ulid.New(ms, s.mono)
	if err != nil {
		// Monotonic entropy overflows only after 2^80 IDs in one millisecond.
		panic(err)
	}
	s.last = id
	return id.String()
}

var std = NewSource()

// New returns a ULID stamped with the current wall clock.
func New() string {
	return std.NewAt(time.Now())
}

// NewAt stamps with t on the process-wide source.
func NewAt(t time.Time) string {
	return std.NewAt(t)
}
