package codec

import (
	"encoding/binary"
	"fmt"
)

// Value tags, mirrored here rather than imported from package holmes to
// avoid a storage-layer → engine-layer import cycle; codec only ever sees
// raw tag bytes and byte payloads, never a holmes.Value.
const (
	TagString byte = iota
	TagAddr
	TagBlob
	TagJSON
	TagList
)

// EncodeValue produces the self-describing byte encoding of a single Value
// used in a Badger row key (the row's stored value is empty). It is
// tag + big-endian length-prefixed payload, recursively for lists — not
// designed to be byte-order comparable (the engine never range-scans by
// Value order, only by predicate and exact argument match), only to be
// unambiguous and self-delimiting so a row can be decoded back into the
// positional Values it encodes.
func EncodeValue(tag byte, payload []byte) []byte {
	out := make([]byte, 0, 1+4+len(payload))
	out = append(out, tag)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	return out
}

// EncodeAddr encodes an addr Value's payload: the raw big-endian bit
// pattern of the unsigned 64-bit integer (spec §9's documented backend
// reinterpretation).
func EncodeAddr(a uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], a)
	return buf[:]
}

func DecodeAddr(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: addr payload must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadValue consumes one EncodeValue-encoded Value from the front of b,
// returning its tag, payload, and the remaining bytes.
func ReadValue(b []byte) (tag byte, payload []byte, rest []byte, err error) {
	if len(b) < 5 {
		return 0, nil, nil, fmt.Errorf("codec: truncated value header")
	}
	tag = b[0]
	n := binary.BigEndian.Uint32(b[1:5])
	if uint32(len(b)-5) < n {
		return 0, nil, nil, fmt.Errorf("codec: truncated value payload")
	}
	payload = b[5 : 5+n]
	rest = b[5+n:]
	return tag, payload, rest, nil
}
