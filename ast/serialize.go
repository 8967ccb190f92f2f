package ast

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of a subtree.
//
// Encoding conventions:
//   - First byte: FormatVersion
//   - Node: tag byte, uint32 operand count, operands inline
//   - Operand: kind byte, then payload
//   - Strings and symbols: uint32 big-endian length + bytes
//   - Integers: int64 big-endian
//
// Positions and annotations are not encoded: two trees with the same
// shape serialize identically wherever they came from.
// ---------------------------------------------------------------------------

// FormatVersion prefixes every serialization. Bumping it invalidates all
// stored fingerprints.
const FormatVersion byte = 1

// Serialize produces the deterministic byte encoding of the subtree at id.
func (a *Arena) Serialize(id NodeID) []byte {
	s := &serializer{arena: a, buf: make([]byte, 0, 256)}
	s.writeByte(FormatVersion)
	s.node(id)
	return s.buf
}

// Fingerprint hashes the subtree's serialization. Equal fingerprints mean
// equal shapes; passes compare fingerprints to detect no-op reruns.
func (a *Arena) Fingerprint(id NodeID) uint64 {
	return xxh3.Hash(a.Serialize(id))
}

type serializer struct {
	arena *Arena
	buf   []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	s.buf = binary.BigEndian.AppendUint32(s.buf, v)
}

func (s *serializer) writeInt64(v int64) {
	s.buf = binary.BigEndian.AppendUint64(s.buf, uint64(v))
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) node(id NodeID) {
	n := s.arena.Node(id)
	s.writeByte(byte(n.Tag))
	s.writeUint32(uint32(len(n.Args)))
	for _, v := range n.Args {
		s.value(v)
	}
}

func (s *serializer) value(v Value) {
	s.writeByte(byte(v.Kind))
	switch v.Kind {
	case KindSymbol, KindString:
		s.writeString(v.Text)
	case KindInt:
		s.writeInt64(v.Int)
	case KindNode:
		s.node(v.Node)
	}
}
