package codec

import "testing"

func TestEncodeValueRoundTrip(t *testing.T) {
	enc := EncodeValue(TagString, []byte("hello"))
	tag, payload, rest, err := ReadValue(enc)
	if err != nil {
		t.Fatal(err)
	}
	if tag != TagString || string(payload) != "hello" || len(rest) != 0 {
		t.Errorf("got tag=%d payload=%q rest=%v", tag, payload, rest)
	}
}

func TestReadValueConsumesPrefixOnly(t *testing.T) {
	first := EncodeValue(TagAddr, EncodeAddr(7))
	second := EncodeValue(TagString, []byte("x"))
	buf := append(append([]byte{}, first...), second...)

	tag, payload, rest, err := ReadValue(buf)
	if err != nil {
		t.Fatal(err)
	}
	if tag != TagAddr {
		t.Errorf("tag = %d, want TagAddr", tag)
	}
	n, err := DecodeAddr(payload)
	if err != nil || n != 7 {
		t.Errorf("DecodeAddr = %d, %v, want 7, nil", n, err)
	}
	if string(rest) != string(second) {
		t.Errorf("rest did not leave the second encoded value intact")
	}
}

func TestReadValueRejectsTruncatedInput(t *testing.T) {
	if _, _, _, err := ReadValue([]byte{TagString, 0, 0}); err == nil {
		t.Error("expected an error on a truncated header")
	}
	full := EncodeValue(TagString, []byte("abc"))
	if _, _, _, err := ReadValue(full[:len(full)-1]); err == nil {
		t.Error("expected an error on a truncated payload")
	}
}

func TestEncodeAddrDecodeAddrRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 255, 1 << 40} {
		got, err := DecodeAddr(EncodeAddr(n))
		if err != nil || got != n {
			t.Errorf("round trip for %d: got %d, %v", n, got, err)
		}
	}
}
