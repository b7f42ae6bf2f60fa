package srp_test

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // test mirrors the protocol's mandated hash
	"math/big"

	"github.com/idewave/tine/internal/srp"
)

// referenceClient is a minimal stand-in for a real SRP-6 client, used only
// to exercise the round-trip invariant against Engine: it derives A, x, the
// shared secret, session key and client proof the same way a genuine client
// would, without depending on Engine's internals.
type referenceClient struct {
	account  string
	password string

	a *big.Int
	A *big.Int
}

func newReferenceClient(account, password string) (*referenceClient, error) {
	aBytes := make([]byte, 32)
	if _, err := rand.Read(aBytes); err != nil {
		return nil, err
	}

	c := &referenceClient{account: account, password: password}
	c.a = leToInt(aBytes)
	c.A = new(big.Int).Exp(srp.G, c.a, srp.N)
	return c, nil
}

// ephemeralBytes returns A's stripped little-endian encoding. LOGIN_PROOF's
// client_ephemeral field is a fixed 32 bytes, so this equals the wire form
// only when A's high-order byte is non-zero.
func (c *referenceClient) ephemeralBytes() []byte {
	return leFromInt(c.A)
}

// deriveProof computes M_client and K_client given the server's salt and B,
// mirroring the server-side derivation in Engine but from the client's side
// of the exchange: S = (B - k*g^x)^(a + u*x) mod N.
func (c *referenceClient) deriveProof(salt, serverEphemeralBytes []byte) (m, k []byte) {
	x := computeX(salt, c.account, c.password)
	b := leToInt(serverEphemeralBytes)

	u := computeU(c.ephemeralBytes(), serverEphemeralBytes)

	gx := new(big.Int).Exp(srp.G, x, srp.N)
	kgx := new(big.Int).Mul(srp.K, gx)
	base := new(big.Int).Sub(b, kgx)
	base.Mod(base, srp.N)

	exp := new(big.Int).Mul(u, x)
	exp.Add(exp, c.a)

	s := new(big.Int).Exp(base, exp, srp.N)

	kBytes := interleaveForTest(leFromInt(s))

	nHash := sha1.Sum(leFromInt(srp.N)) //nolint:gosec
	gHash := sha1.Sum(leFromInt(srp.G)) //nolint:gosec
	xorHash := make([]byte, len(nHash))
	for i := range nHash {
		xorHash[i] = nHash[i] ^ gHash[i]
	}
	identityHash := sha1.Sum([]byte(c.account)) //nolint:gosec

	h := sha1.New() //nolint:gosec
	h.Write(xorHash)
	h.Write(identityHash[:])
	h.Write(salt)
	h.Write(c.ephemeralBytes())
	h.Write(serverEphemeralBytes)
	h.Write(kBytes)

	return h.Sum(nil), kBytes
}

func computeX(salt []byte, account, password string) *big.Int {
	identity := sha1.Sum([]byte(account + ":" + password)) //nolint:gosec
	h := sha1.New()                                         //nolint:gosec
	h.Write(salt)
	h.Write(identity[:])
	return leToInt(h.Sum(nil))
}

func computeU(a, b []byte) *big.Int {
	h := sha1.New() //nolint:gosec
	h.Write(a)
	h.Write(b)
	return leToInt(h.Sum(nil))
}

func interleaveForTest(s []byte) []byte {
	var even, odd []byte
	for i, b := range s {
		if i%2 == 0 {
			even = append(even, b)
		} else {
			odd = append(odd, b)
		}
	}
	evenHash := sha1.Sum(even) //nolint:gosec
	oddHash := sha1.Sum(odd)   //nolint:gosec

	out := make([]byte, 0, srp.SessionKeySize)
	for i := range evenHash {
		out = append(out, evenHash[i], oddHash[i])
	}
	return out
}

func leToInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(rev)
}

func leFromInt(x *big.Int) []byte {
	be := x.Bytes()
	rev := make([]byte, len(be))
	for i, v := range be {
		rev[len(be)-1-i] = v
	}
	return rev
}
