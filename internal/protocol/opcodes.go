// Package protocol implements the login-dialect and world-dialect binary
// framing for the gateway: fixed and length-prefixed fields, little-endian
// integers, NUL-terminated strings, and the handful of opcode-tagged
// structures the handshake and realm discovery exchange.
package protocol

// Login-dialect opcodes. The first payload byte on the wire is the opcode;
// any value not listed here resolves to an empty handler list.
const (
	OpLoginChallenge uint8 = 0x00
	OpLoginProof     uint8 = 0x01
	OpRealmList      uint8 = 0x10
)

// AccountFlagPropass is the only account flag this gateway ever sets in a
// LOGIN_PROOF reply.
const AccountFlagPropass uint32 = 0x00800000

// VersionChallenge is a fixed 16-byte payload the server emits verbatim in
// every LoginChallengeOut; the client derives a CRC over its binary using it.
var VersionChallenge = [16]byte{
	0xBA, 0xA3, 0x1E, 0x99, 0xA0, 0x0B, 0x21, 0x57,
	0xFC, 0x37, 0x3F, 0xB3, 0x69, 0xCD, 0xD2, 0xF1,
}
