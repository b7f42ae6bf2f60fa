package protocol

import "math"

// OpSMSGAuthChallenge is the world-dialect opcode for the server-initiated
// challenge sent immediately after a world-server accept.
const OpSMSGAuthChallenge uint16 = 0x01EC

// LoginChallengeIn is the client's initial handshake request.
type LoginChallengeIn struct {
	Unknown    uint8
	PacketSize uint16
	GameName   string
	Version    [3]byte
	Build      uint16
	Platform   string
	OS         string
	Locale     string
	Timezone   uint32
	IP         [4]byte
	Account    string
}

// DecodeLoginChallengeIn parses a LOGIN_CHALLENGE payload (opcode byte
// already stripped).
func DecodeLoginChallengeIn(payload []byte) (*LoginChallengeIn, error) {
	r := NewReader(payload)

	msg := &LoginChallengeIn{}

	var err error
	if msg.Unknown, err = r.ReadU8("unknown"); err != nil {
		return nil, err
	}
	if msg.PacketSize, err = r.ReadU16LE("packet_size"); err != nil {
		return nil, err
	}
	if msg.GameName, err = r.ReadCString("game_name"); err != nil {
		return nil, err
	}
	version, err := r.ReadBytes("version", 3)
	if err != nil {
		return nil, err
	}
	copy(msg.Version[:], version)
	if msg.Build, err = r.ReadU16LE("build"); err != nil {
		return nil, err
	}
	if msg.Platform, err = r.ReadCString("platform"); err != nil {
		return nil, err
	}
	if msg.OS, err = r.ReadCString("os"); err != nil {
		return nil, err
	}
	if msg.Locale, err = r.ReadReversedASCII4("locale"); err != nil {
		return nil, err
	}
	if msg.Timezone, err = r.ReadU32LE("timezone"); err != nil {
		return nil, err
	}
	ip, err := r.ReadBytes("ip", 4)
	if err != nil {
		return nil, err
	}
	copy(msg.IP[:], ip)

	accountLength, err := r.ReadU8("account_length")
	if err != nil {
		return nil, err
	}
	accountBytes, err := r.ReadBytes("account", int(accountLength))
	if err != nil {
		return nil, err
	}
	msg.Account = string(accountBytes)

	return msg, nil
}

// LoginChallengeOut is the server's handshake reply, carrying the SRP group
// and the connection's salt and server ephemeral.
type LoginChallengeOut struct {
	ServerEphemeral []byte // stripped little-endian, no inner length prefix
	Generator       []byte // stripped little-endian
	Modulus         []byte // stripped little-endian
	Salt            [32]byte
}

// Encode serializes a full LOGIN_CHALLENGE reply packet, including its
// leading opcode byte.
func (m *LoginChallengeOut) Encode() []byte {
	w := NewWriter()
	w.WriteU8(OpLoginChallenge)
	w.WriteU8(0) // unknown
	w.WriteU8(0) // code: success
	w.WriteBytes(m.ServerEphemeral)
	w.WriteU8(uint8(len(m.Generator)))
	w.WriteBytes(m.Generator)
	w.WriteU8(uint8(len(m.Modulus)))
	w.WriteBytes(m.Modulus)
	w.WriteBytes(m.Salt[:])
	w.WriteBytes(VersionChallenge[:])
	w.WriteU8(0) // unknown2
	return w.Bytes()
}

// LoginProofIn is the client's SRP proof submission.
type LoginProofIn struct {
	ClientEphemeral [32]byte
	ClientProof     [20]byte
	CRCHash         [20]byte
	KeysCount       uint8
	SecurityFlags   uint8
}

// DecodeLoginProofIn parses a LOGIN_PROOF payload (opcode byte stripped).
func DecodeLoginProofIn(payload []byte) (*LoginProofIn, error) {
	r := NewReader(payload)
	msg := &LoginProofIn{}

	ephemeral, err := r.ReadBytes("client_ephemeral", 32)
	if err != nil {
		return nil, err
	}
	copy(msg.ClientEphemeral[:], ephemeral)

	proof, err := r.ReadBytes("client_proof", 20)
	if err != nil {
		return nil, err
	}
	copy(msg.ClientProof[:], proof)

	crc, err := r.ReadBytes("crc_hash", 20)
	if err != nil {
		return nil, err
	}
	copy(msg.CRCHash[:], crc)

	if msg.KeysCount, err = r.ReadU8("keys_count"); err != nil {
		return nil, err
	}
	if msg.SecurityFlags, err = r.ReadU8("security_flags"); err != nil {
		return nil, err
	}

	return msg, nil
}

// LoginProofOut is the server's proof reply, sent only when the client's
// proof matched.
type LoginProofOut struct {
	ServerProof [20]byte
}

// Encode serializes a full LOGIN_PROOF reply packet, including its leading
// opcode byte.
func (m *LoginProofOut) Encode() []byte {
	w := NewWriter()
	w.WriteU8(OpLoginProof)
	w.WriteU8(0) // error: success
	w.WriteBytes(m.ServerProof[:])
	w.WriteU32LE(AccountFlagPropass)
	w.WriteU32LE(0) // survey_id
	w.WriteU16LE(0) // unknown_flags
	return w.Bytes()
}

// Realm is an advertised world-server endpoint.
type Realm struct {
	Icon           uint8
	Lock           uint8
	Flags          uint8
	Name           string
	Address        string
	Population     float32
	CharacterCount uint8
	Timezone       uint8
	ServerID       uint8
}

func float32Bits(f float32) uint32 {
	return math.Float32bits(f)
}

func (r *Realm) encode(w *Writer) {
	w.WriteU8(r.Icon)
	w.WriteU8(r.Lock)
	w.WriteU8(r.Flags)
	w.WriteCString(r.Name)
	w.WriteCString(r.Address)
	w.WriteU32LE(float32Bits(r.Population))
	w.WriteU8(r.CharacterCount)
	w.WriteU8(r.Timezone)
	w.WriteU8(r.ServerID)
}

// EncodeRealmList serializes a full REALM_LIST reply packet, including its
// leading opcode byte. size is len(serialized realms)+8 and unknown2 is the
// fixed trailer 0x0010.
func EncodeRealmList(realms []Realm) []byte {
	body := NewWriter()
	for i := range realms {
		realms[i].encode(body)
	}
	realmsBytes := body.Bytes()

	w := NewWriter()
	w.WriteU8(OpRealmList)
	w.WriteU16LE(uint16(len(realmsBytes) + 8)) //nolint:gosec // realm lists are tiny
	w.WriteU32LE(0)                            // unknown
	w.WriteU16LE(uint16(len(realms)))          //nolint:gosec // realm counts are tiny
	w.WriteBytes(realmsBytes)
	w.WriteU16LE(0x0010) // unknown2
	return w.Bytes()
}

// AuthChallengeOut is the world server's connect-time challenge.
type AuthChallengeOut struct {
	ServerSeed uint32
	Seed       [32]byte
}

// Encode serializes a full SMSG_AUTH_CHALLENGE packet using the world
// dialect's big-endian-length/little-endian-opcode framing.
func (m *AuthChallengeOut) Encode() []byte {
	body := NewWriter()
	body.WriteU32LE(0) // unknown
	body.WriteU32LE(m.ServerSeed)
	body.WriteBytes(m.Seed[:])
	bodyBytes := body.Bytes()

	length := uint16(len(bodyBytes) + 2) //nolint:gosec // handshake body is fixed-size
	framed := make([]byte, 0, 4+len(bodyBytes))
	framed = append(framed, byte(length>>8), byte(length))
	framed = append(framed, byte(OpSMSGAuthChallenge), byte(OpSMSGAuthChallenge>>8))
	framed = append(framed, bodyBytes...)
	return framed
}
