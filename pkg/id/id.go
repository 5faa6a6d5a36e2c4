// Package id mints identifiers for lots and broker orders.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewLotID returns a ULID, so lots sort by creation time in SQLite.
func NewLotID() string {
	return newULID(time.Now().UTC())
}

func newULID(at time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at), mono)
	if err != nil {
		// Only when the clock runs backwards past the monotonic window.
		return ulid.Make().String()
	}
	return id.String()
}

// NewClientOrderID returns the client order id sent to the broker. Brokers
// expect a UUID here.
func NewClientOrderID() string {
	return uuid.NewString()
}

// ValidClientOrderID reports whether s parses as a UUID.
func ValidClientOrderID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
