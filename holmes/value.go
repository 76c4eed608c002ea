// Package holmes implements a forward-chaining fact engine: a typed fact
// store, a schema registry, and the value/template model analyzers and
// queries are built on top of.
package holmes

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Tag identifies which carrier a Value holds.
type Tag uint8

const (
	TagString Tag = iota
	TagAddr
	TagBlob
	TagJSON
	TagList
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagAddr:
		return "addr"
	case TagBlob:
		return "blob"
	case TagJSON:
		return "json"
	case TagList:
		return "list"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// HType names the type of a fact position. It is the schema-level
// counterpart to Value: every stored Value's Tag must match the HType at
// its position, recursively for List.
type HType struct {
	Tag  Tag
	Elem *HType // non-nil iff Tag == TagList
}

// String renders an HType as the registry's human-readable name for it.
func (t HType) String() string {
	if t.Tag == TagList {
		return "list<" + t.Elem.String() + ">"
	}
	return t.Tag.String()
}

// Equal reports whether two HTypes are structurally identical.
func (t HType) Equal(o HType) bool {
	if t.Tag != o.Tag {
		return false
	}
	if t.Tag != TagList {
		return true
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(*o.Elem)
}

func StringType() HType { return HType{Tag: TagString} }
func AddrType() HType   { return HType{Tag: TagAddr} }
func BlobType() HType   { return HType{Tag: TagBlob} }
func JSONType() HType   { return HType{Tag: TagJSON} }
func ListType(elem HType) HType {
	e := elem
	return HType{Tag: TagList, Elem: &e}
}

// Value is a tagged union over the carriers the engine understands. The
// zero Value is an empty string, which is deliberate: nothing in the
// engine treats the zero Value as "no value" — absence is modeled by not
// having a position at all (Unbound), never by a sentinel Value.
type Value struct {
	tag  Tag
	str  string  // TagString, TagJSON (JSON text is compared as bytes but stored as string)
	addr uint64  // TagAddr
	blob []byte  // TagBlob
	list []Value // TagList
}

func NewString(s string) Value { return Value{tag: TagString, str: s} }
func NewAddr(a uint64) Value   { return Value{tag: TagAddr, addr: a} }
func NewBlob(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{tag: TagBlob, blob: cp}
}
func NewJSON(raw string) Value { return Value{tag: TagJSON, str: raw} }
func NewList(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{tag: TagList, list: cp}
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) String() string {
	if v.tag != TagString && v.tag != TagJSON {
		panic("holmes: String() called on non-string Value")
	}
	return v.str
}

func (v Value) Addr() uint64 {
	if v.tag != TagAddr {
		panic("holmes: Addr() called on non-addr Value")
	}
	return v.addr
}

func (v Value) Blob() []byte {
	if v.tag != TagBlob {
		panic("holmes: Blob() called on non-blob Value")
	}
	out := make([]byte, len(v.blob))
	copy(out, v.blob)
	return out
}

func (v Value) JSON() string {
	if v.tag != TagJSON {
		panic("holmes: JSON() called on non-json Value")
	}
	return v.str
}

func (v Value) List() []Value {
	if v.tag != TagList {
		panic("holmes: List() called on non-list Value")
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// inferredElemType is the element type HType reports for a list: the type
// of its first element. An empty list has no element type of its own and
// yields the zero HType; TypeCheck must be told what's expected.
func (v Value) inferredElemType() HType {
	if len(v.list) == 0 {
		return HType{}
	}
	return v.list[0].HType()
}

func (v Value) HType() HType {
	switch v.tag {
	case TagList:
		elem := v.inferredElemType()
		return HType{Tag: TagList, Elem: &elem}
	default:
		return HType{Tag: v.tag}
	}
}

// TypeCheck reports whether v is a valid inhabitant of t — v's tag matches
// t's tag, recursively for lists (every element must type-check against
// t.Elem; an empty list type-checks against any list type).
func TypeCheck(v Value, t HType) bool {
	if v.tag != t.Tag {
		return false
	}
	if v.tag != TagList {
		return true
	}
	for _, e := range v.list {
		if !TypeCheck(e, *t.Elem) {
			return false
		}
	}
	return true
}

// Compare implements the total order from spec §3: first by tag ordinal,
// then by the carrier-specific order.
func Compare(a, b Value) int {
	if a.tag != b.tag {
		if a.tag < b.tag {
			return -1
		}
		return 1
	}
	switch a.tag {
	case TagString:
		return compareStrings(a.str, b.str)
	case TagAddr:
		return compareUint64(a.addr, b.addr)
	case TagBlob:
		return bytes.Compare(a.blob, b.blob)
	case TagJSON:
		return bytes.Compare([]byte(a.str), []byte(b.str))
	case TagList:
		return compareLists(a.list, b.list)
	default:
		panic("holmes: unknown Value tag in Compare")
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareLists(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareUint64(uint64(len(a)), uint64(len(b)))
}

// Equal is the equivalence induced by Compare.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// Less is a convenience for sort.Slice-style callers.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

// GobEncode and GobDecode make Value safe to send over encoding/gob (used
// by holmes/rpc) despite its fields being unexported: gob has no access to
// them otherwise. The wire form is a tag byte followed by the payload;
// list elements are each prefixed with a 4-byte big-endian length.
func (v Value) GobEncode() ([]byte, error) {
	switch v.tag {
	case TagString, TagJSON:
		return encodeTagged(v.tag, []byte(v.str)), nil
	case TagAddr:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, v.addr)
		return encodeTagged(v.tag, buf), nil
	case TagBlob:
		return encodeTagged(v.tag, v.blob), nil
	case TagList:
		var payload []byte
		for _, e := range v.list {
			enc, err := e.GobEncode()
			if err != nil {
				return nil, err
			}
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(enc)))
			payload = append(payload, lenBuf[:]...)
			payload = append(payload, enc...)
		}
		return encodeTagged(v.tag, payload), nil
	default:
		return nil, fmt.Errorf("holmes: GobEncode: unknown tag %d", v.tag)
	}
}

func encodeTagged(tag Tag, payload []byte) []byte {
	out := make([]byte, 1, 1+len(payload))
	out[0] = byte(tag)
	return append(out, payload...)
}

func (v *Value) GobDecode(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("holmes: GobDecode: empty payload")
	}
	tag, payload := Tag(data[0]), data[1:]
	switch tag {
	case TagString:
		*v = NewString(string(payload))
	case TagJSON:
		*v = NewJSON(string(payload))
	case TagAddr:
		if len(payload) != 8 {
			return fmt.Errorf("holmes: GobDecode: bad addr length %d", len(payload))
		}
		*v = NewAddr(binary.BigEndian.Uint64(payload))
	case TagBlob:
		*v = NewBlob(payload)
	case TagList:
		var elems []Value
		for len(payload) > 0 {
			if len(payload) < 4 {
				return fmt.Errorf("holmes: GobDecode: truncated list element length")
			}
			n := binary.BigEndian.Uint32(payload[:4])
			payload = payload[4:]
			if uint32(len(payload)) < n {
				return fmt.Errorf("holmes: GobDecode: truncated list element")
			}
			var e Value
			if err := e.GobDecode(payload[:n]); err != nil {
				return err
			}
			elems = append(elems, e)
			payload = payload[n:]
		}
		*v = NewList(elems)
	default:
		return fmt.Errorf("holmes: GobDecode: unknown tag %d", tag)
	}
	return nil
}

// CanonicalKey renders v as a self-delimiting byte string suitable for use
// as a map key wherever Value equality (not Value order) is all that's
// needed — the seen-binding cache and the forall grouping key both build
// on this rather than hashing, so two Values that compare Equal always
// produce the same key.
func CanonicalKey(v Value) []byte {
	// Variable-length payloads carry a 4-byte length so a key never runs
	// into the key that follows it inside a list or a Context.
	withLen := func(tag byte, payload []byte) []byte {
		buf := []byte{tag, 0, 0, 0, 0}
		binary.BigEndian.PutUint32(buf[1:], uint32(len(payload)))
		return append(buf, payload...)
	}
	switch v.tag {
	case TagString:
		return withLen(0, []byte(v.str))
	case TagAddr:
		a := v.addr
		return []byte{1, byte(a >> 56), byte(a >> 48), byte(a >> 40), byte(a >> 32), byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
	case TagBlob:
		return withLen(2, v.blob)
	case TagJSON:
		return withLen(3, []byte(v.str))
	case TagList:
		buf := []byte{4}
		for _, e := range v.list {
			buf = append(buf, CanonicalKey(e)...)
			buf = append(buf, 0xff)
		}
		return buf
	default:
		return nil
	}
}
