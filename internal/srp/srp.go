// Package srp implements the SRP-6 (not SRP-6a) handshake used by the login
// gateway: a fixed multiplier k=3, SHA-1 throughout, and little-endian,
// leading-zero-stripped big integer encoding on the wire.
//
// Unlike RFC 5054's SRP-6a (which derives k = H(N | g)), this package fixes
// k = 3 to match the legacy client generation the gateway serves. Engine is
// per-connection state: construct one with New() at accept time, mutate it
// through the handshake in the fixed order account -> verifier -> server
// ephemeral -> session key -> proof, and discard it on disconnect.
package srp

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // protocol mandates SHA-1, not a security choice made here
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
)

const (
	nHex = "894B645E89E1535BBDAD5B8B290650530801B18EBFBF5E8FAB3C82872A3E9BB7"

	saltSize             = 32
	privateEphemeralSize = 19

	// SessionKeySize is the length in bytes of the interleaved session key K.
	SessionKeySize = 40
	// ProofSize is the length in bytes of a SHA-1 digest used for M and M2.
	ProofSize = sha1.Size
)

// Group parameters, fixed for the entire process lifetime.
var (
	N = mustParseHex(nHex) // 256-bit prime modulus
	G = big.NewInt(7)      // generator
	K = big.NewInt(3)      // multiplier, fixed (SRP-6, not -6a)
)

// NBytes returns the group modulus N, stripped little-endian.
func NBytes() []byte {
	return intToLEBytes(N)
}

// GBytes returns the group generator g, stripped little-endian.
func GBytes() []byte {
	return intToLEBytes(G)
}

func mustParseHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("srp: invalid group modulus constant")
	}
	return n
}

// Errors returned by Engine operations.
var (
	// ErrPrerequisiteMissing is returned when a handshake step is invoked
	// before the step it depends on has run.
	ErrPrerequisiteMissing = errors.New("srp: prerequisite step not completed")
	// ErrInvalidClientEphemeral is returned when the client ephemeral A
	// reduces to 0 mod N, a degenerate value the protocol must reject.
	ErrInvalidClientEphemeral = errors.New("srp: client ephemeral is congruent to 0 mod N")
)

// Engine holds the per-connection SRP-6 handshake state. It is not safe for
// concurrent use; callers that share it across goroutines must serialize
// access themselves (see Handle).
type Engine struct {
	salt []byte   // random, generated at construction
	b    *big.Int // private server ephemeral, generated at construction

	account         string
	verifier        *big.Int
	serverEphemeral *big.Int
	sessionKey      []byte

	hasAccount         bool
	hasVerifier        bool
	hasServerEphemeral bool
	hasSessionKey      bool
}

// New creates an Engine with a freshly randomized salt and private ephemeral.
func New() (*Engine, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("srp: generating salt: %w", err)
	}

	bBytes := make([]byte, privateEphemeralSize)
	if _, err := rand.Read(bBytes); err != nil {
		return nil, fmt.Errorf("srp: generating private ephemeral: %w", err)
	}

	return &Engine{
		salt: salt,
		b:    leBytesToInt(bBytes),
	}, nil
}

// Salt returns the handshake's 32-byte salt.
func (e *Engine) Salt() []byte {
	return e.salt
}

// ServerEphemeral returns B, stripped little-endian, once generated.
func (e *Engine) ServerEphemeral() ([]byte, error) {
	if !e.hasServerEphemeral {
		return nil, ErrPrerequisiteMissing
	}
	return intToLEBytes(e.serverEphemeral), nil
}

// SessionKey returns the 40-byte interleaved session key K, once computed.
func (e *Engine) SessionKey() ([]byte, error) {
	if !e.hasSessionKey {
		return nil, ErrPrerequisiteMissing
	}
	return e.sessionKey, nil
}

// SetAccount uppercases and stores the account name as I.
func (e *Engine) SetAccount(name string) {
	e.account = strings.ToUpper(name)
	e.hasAccount = true
	e.hasVerifier = false
	e.hasServerEphemeral = false
	e.hasSessionKey = false
}

// GenerateVerifier computes x = H(salt | H(I | ":" | I)) and v = g^x mod N.
//
// The gateway synthesizes accounts on demand rather than reading a stored
// password-equivalent verifier from a database, so the "password" half of x
// is the account name itself, mirroring the account name used as I.
func (e *Engine) GenerateVerifier() error {
	if !e.hasAccount {
		return ErrPrerequisiteMissing
	}

	identity := sha1.Sum([]byte(e.account + ":" + e.account)) //nolint:gosec

	xHash := sha1.New() //nolint:gosec
	xHash.Write(e.salt)
	xHash.Write(identity[:])
	x := leBytesToInt(xHash.Sum(nil))

	e.verifier = new(big.Int).Exp(G, x, N)
	e.hasVerifier = true
	return nil
}

// GenerateServerEphemeral computes B = (k*v + g^b mod N) mod N.
func (e *Engine) GenerateServerEphemeral() error {
	if !e.hasVerifier {
		return ErrPrerequisiteMissing
	}

	kv := new(big.Int).Mul(K, e.verifier)
	kv.Mod(kv, N)

	gb := new(big.Int).Exp(G, e.b, N)

	b := new(big.Int).Add(kv, gb)
	b.Mod(b, N)

	e.serverEphemeral = b
	e.hasServerEphemeral = true
	return nil
}

// CalculateSessionKey derives the shared secret S from the client ephemeral
// A and splits it into the 40-byte interleaved session key K.
func (e *Engine) CalculateSessionKey(clientEphemeral []byte) error {
	if !e.hasServerEphemeral {
		return ErrPrerequisiteMissing
	}

	a := leBytesToInt(clientEphemeral)
	if new(big.Int).Mod(a, N).Sign() == 0 {
		return ErrInvalidClientEphemeral
	}

	u := e.computeU(clientEphemeral)

	// S = (v^u * A)^b mod N
	vu := new(big.Int).Exp(e.verifier, u, N)
	s := new(big.Int).Mul(vu, a)
	s.Mod(s, N)
	s.Exp(s, e.b, N)

	e.sessionKey = interleave(intToLEBytes(s))
	e.hasSessionKey = true
	return nil
}

// CalculateProof computes M = H((H(N) xor H(g)) | H(I) | salt | A | B | K),
// the client-expected proof of a matching session key.
func (e *Engine) CalculateProof(clientEphemeral []byte) ([]byte, error) {
	if !e.hasSessionKey {
		return nil, ErrPrerequisiteMissing
	}

	nHash := sha1.Sum(intToLEBytes(N)) //nolint:gosec
	gHash := sha1.Sum(intToLEBytes(G)) //nolint:gosec
	xorHash := make([]byte, len(nHash))
	for i := range nHash {
		xorHash[i] = nHash[i] ^ gHash[i]
	}
	identityHash := sha1.Sum([]byte(e.account)) //nolint:gosec

	h := sha1.New() //nolint:gosec
	h.Write(xorHash)
	h.Write(identityHash[:])
	h.Write(e.salt)
	h.Write(clientEphemeral)
	h.Write(intToLEBytes(e.serverEphemeral))
	h.Write(e.sessionKey)

	return h.Sum(nil), nil
}

// HashedServerProof computes M2 = H(A | M | K), the value returned to the
// client to prove the server also derived the session key.
func (e *Engine) HashedServerProof(clientEphemeral, clientProof []byte) ([]byte, error) {
	if !e.hasSessionKey {
		return nil, ErrPrerequisiteMissing
	}

	h := sha1.New() //nolint:gosec
	h.Write(clientEphemeral)
	h.Write(clientProof)
	h.Write(e.sessionKey)
	return h.Sum(nil), nil
}

// computeU derives u = H(A | B) as a little-endian integer. A is used in its
// raw wire form; B is the stripped little-endian encoding of the server
// ephemeral.
func (e *Engine) computeU(clientEphemeral []byte) *big.Int {
	h := sha1.New() //nolint:gosec
	h.Write(clientEphemeral)
	h.Write(intToLEBytes(e.serverEphemeral))
	return leBytesToInt(h.Sum(nil))
}

// interleave splits s's little-endian bytes into even- and odd-indexed
// halves (index 0 is even), hashes each independently, and interleaves the
// two 20-byte digests byte by byte to produce a 40-byte session key.
func interleave(s []byte) []byte {
	even := make([]byte, 0, (len(s)+1)/2)
	odd := make([]byte, 0, len(s)/2)
	for i, b := range s {
		if i%2 == 0 {
			even = append(even, b)
		} else {
			odd = append(odd, b)
		}
	}

	evenHash := sha1.Sum(even) //nolint:gosec
	oddHash := sha1.Sum(odd)   //nolint:gosec

	out := make([]byte, 0, SessionKeySize)
	for i := range evenHash {
		out = append(out, evenHash[i], oddHash[i])
	}
	return out
}

// leBytesToInt interprets b as an unsigned little-endian integer.
func leBytesToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(reversed(b))
}

// intToLEBytes encodes x as unsigned little-endian bytes with leading
// (high-order) zero bytes stripped, i.e. the minimal encoding. It must never
// be re-padded on re-encoding.
func intToLEBytes(x *big.Int) []byte {
	return reversed(x.Bytes())
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Handle wraps an Engine with a mutex so the connection runtime and the
// handler pipeline can share it safely. In steady state a single goroutine
// ever touches a given Handle, so the lock sees no real contention: it
// exists to satisfy Handler's shared-reference contract, not because of
// concurrent access.
type Handle struct {
	mu     sync.Mutex
	Engine *Engine
}

// NewHandle creates a Handle wrapping a freshly constructed Engine.
func NewHandle() (*Handle, error) {
	engine, err := New()
	if err != nil {
		return nil, err
	}
	return &Handle{Engine: engine}, nil
}

// Lock acquires exclusive access and returns the underlying Engine.
func (h *Handle) Lock() *Engine {
	h.mu.Lock()
	return h.Engine
}

// Unlock releases exclusive access acquired by Lock.
func (h *Handle) Unlock() {
	h.mu.Unlock()
}
