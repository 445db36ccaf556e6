package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when opening a buffer after Destroy.
var ErrDestroyed = errors.New("secure buffer destroyed")

// Buffer provides memory-safe storage for a loaded admin password.
// It wraps memguard.Enclave so the secret is encrypted at rest in
// memory and protected from swapping between CSV load and record
// serialization. The plaintext only leaves the enclave when the
// import batch is marshaled.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed tracks if this buffer has been destroyed to allow
	// idempotent Destroy() calls and prevent use after destroy
	destroyed bool
}

// NewBuffer creates a protected buffer from secret bytes.
// The input is immediately copied into a protected memory region;
// the caller should not retain its own copy.
func NewBuffer(data []byte) *Buffer {
	// memguard rejects zero-length buffers; an empty secret behaves
	// like an already-destroyed one.
	if len(data) == 0 {
		return &Buffer{destroyed: true}
	}
	return &Buffer{
		enclave: memguard.NewEnclave(data),
	}
}

// NewBufferFromString creates a protected buffer from a secret string.
func NewBufferFromString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// Open decrypts and returns the protected data in a locked buffer.
// The caller MUST call Destroy() on the returned LockedBuffer when done.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	return b.enclave.Open()
}

// Reveal opens the enclave and returns the secret as a string.
// Intended for the single point where records are serialized; the
// locked plaintext buffer is wiped before returning. A destroyed
// buffer reveals the empty string.
func (b *Buffer) Reveal() (string, error) {
	locked, err := b.Open()
	if errors.Is(err, ErrDestroyed) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Destroy marks this Buffer as destroyed and prevents further use.
// Idempotent. After Destroy(), Open() returns an empty buffer.
// For complete cleanup of all memguard data at process exit, call
// memguard.Purge() in a defer in main().
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
