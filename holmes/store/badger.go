package store

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/codec"
)

// Badger is a github.com/dgraph-io/badger/v4-backed persistent Store,
// grounded on the teacher's datalog/storage/badger_store.go. It follows
// the spec §6 persistent-storage-layout contract: every registered
// predicate gets a key prefix standing in for "one table per predicate",
// with arg0, arg1, … encoded positionally via package codec, and addr
// stored as the raw big-endian bit pattern of the unsigned value.
type Badger struct {
	db     *badger.DB
	schema *holmes.Schema
}

const (
	prefixFact byte = 'F'
	prefixMeta byte = 'S'
)

// NewBadger opens (or creates) a Badger-backed store at path, rebuilding
// the in-memory schema registry from the persisted predicate signatures —
// spec §6's "Schema discovery at startup: enumerate columns to
// reconstruct the in-memory registry."
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open badger at %q: %w", path, err)
	}

	b := &Badger{db: db, schema: holmes.NewSchema()}
	if err := b.loadSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Badger) loadSchema() error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte{prefixMeta}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[1:])
			var sig []holmes.HType
			if err := item.Value(func(val []byte) error {
				decoded, err := decodeSig(val)
				sig = decoded
				return err
			}); err != nil {
				return fmt.Errorf("store: corrupt schema entry for %q: %w", name, err)
			}
			if !b.schema.AddType(name, sig) {
				return fmt.Errorf("store: unreadable schema entry for %q: conflicting startup signature", name)
			}
		}
		return nil
	})
}

func (b *Badger) AddType(name string, argTypes []holmes.HType) bool {
	if !b.schema.AddType(name, argTypes) {
		return false
	}
	// AddType on an already-identical signature is a no-op success, but
	// we still persist idempotently so a fresh process sees it without
	// needing the in-memory call repeated.
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(name), encodeSig(argTypes))
	})
	return err == nil
}

func (b *Badger) SetFacts(facts []holmes.Fact) (DirtySet, error) {
	for _, f := range facts {
		sig, ok := b.schema.Lookup(f.Name)
		if !ok || !f.WellTyped(sig) {
			return nil, &ErrIllTyped{Fact: f}
		}
	}

	dirty := NewDirtySet()
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, f := range facts {
			key := factRowKey(f)
			_, err := txn.Get(key)
			if err == nil {
				continue // already present, not dirty
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Set(key, []byte{}); err != nil {
				return err
			}
			dirty.Add(f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: badger commit failed: %w", err)
	}
	return dirty, nil
}

func (b *Badger) GetFacts(premises []holmes.FactTemplate) ([]holmes.Context, error) {
	var result []holmes.Context
	err := b.db.View(func(txn *badger.Txn) error {
		result = evaluateJoin(&badgerSnapshot{txn: txn, schema: b.schema}, premises)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: badger query failed: %w", err)
	}
	return result, nil
}

func (b *Badger) Dump(name string) []holmes.Fact {
	var out []holmes.Fact
	_ = b.db.View(func(txn *badger.Txn) error {
		facts, ok := (&badgerSnapshot{txn: txn, schema: b.schema}).factsFor(name)
		if ok {
			out = facts
		}
		return nil
	})
	return out
}

func (b *Badger) Close() error { return b.db.Close() }

// badgerSnapshot adapts one read transaction to the factSource interface
// evaluateJoin needs, scanning the key range for a predicate's rows and
// decoding each back into a holmes.Fact using the registered signature.
type badgerSnapshot struct {
	txn    *badger.Txn
	schema *holmes.Schema
}

func (s *badgerSnapshot) factsFor(name string) ([]holmes.Fact, bool) {
	sig, ok := s.schema.Lookup(name)
	if !ok {
		return nil, false
	}

	prefix := append([]byte{prefixFact}, []byte(name)...)
	prefix = append(prefix, 0)

	it := s.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var facts []holmes.Fact
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		args, err := decodeRowArgs(key[len(prefix):], sig)
		if err != nil {
			continue
		}
		facts = append(facts, holmes.Fact{Name: name, Args: args})
	}
	sort.Slice(facts, func(i, j int) bool { return holmes.CompareFacts(facts[i], facts[j]) < 0 })
	return facts, true
}

func metaKey(name string) []byte {
	return append([]byte{prefixMeta}, []byte(name)...)
}

func factRowKey(f holmes.Fact) []byte {
	key := append([]byte{prefixFact}, []byte(f.Name)...)
	key = append(key, 0)
	for _, v := range f.Args {
		key = append(key, encodeValueRow(v)...)
	}
	return key
}

func encodeValueRow(v holmes.Value) []byte {
	switch v.Tag() {
	case holmes.TagString:
		return codec.EncodeValue(codec.TagString, []byte(v.String()))
	case holmes.TagAddr:
		return codec.EncodeValue(codec.TagAddr, codec.EncodeAddr(v.Addr()))
	case holmes.TagBlob:
		return codec.EncodeValue(codec.TagBlob, v.Blob())
	case holmes.TagJSON:
		return codec.EncodeValue(codec.TagJSON, []byte(v.JSON()))
	case holmes.TagList:
		var buf bytes.Buffer
		for _, e := range v.List() {
			buf.Write(encodeValueRow(e))
		}
		return codec.EncodeValue(codec.TagList, buf.Bytes())
	default:
		return nil
	}
}

func decodeRowArgs(row []byte, sig []holmes.HType) ([]holmes.Value, error) {
	args := make([]holmes.Value, len(sig))
	rest := row
	for i, t := range sig {
		v, remaining, err := decodeOneValue(rest, t)
		if err != nil {
			return nil, err
		}
		args[i] = v
		rest = remaining
	}
	return args, nil
}

func decodeOneValue(b []byte, t holmes.HType) (holmes.Value, []byte, error) {
	tag, payload, rest, err := codec.ReadValue(b)
	if err != nil {
		return holmes.Value{}, nil, err
	}
	switch tag {
	case codec.TagString:
		return holmes.NewString(string(payload)), rest, nil
	case codec.TagAddr:
		a, err := codec.DecodeAddr(payload)
		if err != nil {
			return holmes.Value{}, nil, err
		}
		return holmes.NewAddr(a), rest, nil
	case codec.TagBlob:
		return holmes.NewBlob(payload), rest, nil
	case codec.TagJSON:
		return holmes.NewJSON(string(payload)), rest, nil
	case codec.TagList:
		if t.Elem == nil {
			return holmes.Value{}, nil, fmt.Errorf("store: list value with no element type")
		}
		var elems []holmes.Value
		remaining := payload
		for len(remaining) > 0 {
			e, r, err := decodeOneValue(remaining, *t.Elem)
			if err != nil {
				return holmes.Value{}, nil, err
			}
			elems = append(elems, e)
			remaining = r
		}
		return holmes.NewList(elems), rest, nil
	default:
		return holmes.Value{}, nil, fmt.Errorf("store: unknown value tag %d on disk", tag)
	}
}

// encodeSig/decodeSig persist an HType signature as a flat sequence of
// tag bytes: a TagList byte is followed directly by its element type's
// encoding, and every other tag stands alone (HType.Elem is only ever
// present for TagList), so no terminator is needed.
func encodeSig(sig []holmes.HType) []byte {
	var buf bytes.Buffer
	for _, t := range sig {
		encodeHType(&buf, t)
	}
	return buf.Bytes()
}

func encodeHType(buf *bytes.Buffer, t holmes.HType) {
	buf.WriteByte(byte(t.Tag))
	if t.Tag == holmes.TagList {
		encodeHType(buf, *t.Elem)
	}
}

func decodeSig(b []byte) ([]holmes.HType, error) {
	var sig []holmes.HType
	r := bytes.NewReader(b)
	for r.Len() > 0 {
		t, err := decodeHType(r)
		if err != nil {
			return nil, err
		}
		sig = append(sig, t)
	}
	return sig, nil
}

func decodeHType(r *bytes.Reader) (holmes.HType, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return holmes.HType{}, err
	}
	tag := holmes.Tag(tagByte)
	if tag != holmes.TagList {
		return holmes.HType{Tag: tag}, nil
	}
	elem, err := decodeHType(r)
	if err != nil {
		return holmes.HType{}, err
	}
	return holmes.HType{Tag: holmes.TagList, Elem: &elem}, nil
}
