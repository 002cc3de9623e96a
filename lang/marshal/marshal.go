// Package marshal serialises a compiler.LocalBlock tree to the byte-exact
// image described in spec §6: a three-byte version triple followed by the
// outermost block, each block's filename, name, stack depth, constant
// pool, locals, globals and instruction stream framed by section markers.
// No top-level byte in the encoded stream is 0x00 except as a section or
// instruction-stream terminator, matching the data model's invariant (v)
// that opcode 0x00 never appears as a live instruction.
//
// Grounded on _examples/original_source/src/compiler/marshal.rs for the
// section shape (which never finishes serialising constants, locals or
// nested blocks — see DESIGN.md); the encode/decode naming convention
// follows _examples/tetratelabs-wazero's internal/wasm/binary package
// (encodeX/decodeX per construct).
package marshal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/valhalla-lang/valhallac/lang/compiler"
)

// Version is the three-byte (major, minor, tiny) triple every marshalled
// image begins with.
var Version = [3]byte{1, 0, 0}

// Section markers frame the four per-block sections; each section is
// terminated by sectionEnd (0x00), which cannot collide with a live
// constant tag (tags start at 1) or a live top-level opcode (EOI is 0 but
// never emitted, per invariant (v)).
const (
	secConstants byte = 0x11
	secLocals    byte = 0x12
	secInstrs    byte = 0x13
	secGlobals   byte = 0x14
	sectionEnd   byte = 0x00
)

// Constant-pool element tags. Nat/Int/Real/Str match spec §6 exactly;
// Sym/Code/Nil extend the format (undocumented by spec.md) to cover the
// rest of the Element sum — see DESIGN.md. Set is deliberately left
// unencodable, per Open Question (iii).
const (
	tagNatural byte = 0x01
	tagInteger byte = 0x02
	tagReal    byte = 0x03
	tagString  byte = 0x04
	tagSymbol  byte = 0x05
	tagCode    byte = 0x06
	tagNil     byte = 0x07
	tagSet     byte = 0x08
)

// UnsupportedElementError reports that Marshal encountered a Set
// constant, which this marshaller cannot serialise (Open Question iii).
type UnsupportedElementError struct {
	Index int
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("marshal: constant pool entry %d is a Set, which has no wire encoding", e.Index)
}

// Marshal encodes root as a complete image: the version triple followed
// by root's block, recursively embedding any nested Code constants.
func Marshal(root *compiler.LocalBlock) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Version[:])
	if err := encodeBlock(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBlock(buf *bytes.Buffer, b *compiler.LocalBlock) error {
	writeCString(buf, b.Filename)
	writeCString(buf, b.Name)
	writeU16(buf, uint16(b.StackDepth))

	buf.WriteByte(secConstants)
	for i, c := range b.Constants() {
		if err := encodeElement(buf, c, i); err != nil {
			return err
		}
	}
	buf.WriteByte(sectionEnd)

	buf.WriteByte(secLocals)
	for _, name := range b.Locals() {
		writeCString(buf, name)
	}
	buf.WriteByte(sectionEnd)

	buf.WriteByte(secGlobals)
	for _, name := range b.Globals {
		writeCString(buf, name)
	}
	buf.WriteByte(sectionEnd)

	buf.WriteByte(secInstrs)
	if err := encodeInstructions(buf, b.Instructions); err != nil {
		return err
	}
	buf.WriteByte(sectionEnd)

	return nil
}

// encodeInstructions copies the instruction stream verbatim: it has
// already been validated by the emitter (every opcode byte is followed by
// exactly the operand bytes its arity requires), so there is nothing left
// to encode beyond a straight copy.
func encodeInstructions(buf *bytes.Buffer, instrs []byte) error {
	buf.Write(instrs)
	return nil
}

func encodeElement(buf *bytes.Buffer, e compiler.Element, index int) error {
	switch e.Kind {
	case compiler.ElemNatural:
		buf.WriteByte(tagNatural)
		writeTrimmedUnsigned(buf, e.Nat)
	case compiler.ElemInteger:
		buf.WriteByte(tagInteger)
		writeTrimmedSigned(buf, e.Int)
	case compiler.ElemReal:
		buf.WriteByte(tagReal)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(e.Flt))
		buf.WriteByte(8)
		buf.Write(tmp[:])
	case compiler.ElemString:
		buf.WriteByte(tagString)
		writeLengthPrefixed(buf, e.Str)
	case compiler.ElemSymbol:
		buf.WriteByte(tagSymbol)
		writeLengthPrefixed(buf, e.Str)
	case compiler.ElemCode:
		buf.WriteByte(tagCode)
		return encodeBlock(buf, e.Code)
	case compiler.ElemNil:
		buf.WriteByte(tagNil)
	case compiler.ElemSet:
		return &UnsupportedElementError{Index: index}
	default:
		return fmt.Errorf("marshal: unknown element kind %d at pool index %d", e.Kind, index)
	}
	return nil
}

// writeCString writes s followed by a single NUL terminator. Local,
// global and symbol names are source identifiers and never contain NUL;
// filenames are OS paths, which on every platform this compiler targets
// likewise never embed one.
func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

// writeTrimmedUnsigned writes a Natural's big-endian byte representation
// with leading zero bytes trimmed (so 0 itself encodes as a zero-length
// payload), per spec §6's Nat/Int constant shape.
func writeTrimmedUnsigned(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	i := 0
	for i < 8 && tmp[i] == 0 {
		i++
	}
	payload := tmp[i:]
	buf.WriteByte(byte(len(payload)))
	buf.Write(payload)
}

// writeTrimmedSigned writes an Integer's minimal two's-complement
// big-endian byte representation (ASN.1-style trimming: drop a leading
// byte only when it is pure sign-extension of the next byte), so the
// value's sign is always recoverable from the first remaining byte's high
// bit.
func writeTrimmedSigned(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	i := 0
	for i < 7 {
		b, next := tmp[i], tmp[i+1]
		if (b == 0x00 && next&0x80 == 0) || (b == 0xFF && next&0x80 != 0) {
			i++
			continue
		}
		break
	}
	payload := tmp[i:]
	buf.WriteByte(byte(len(payload)))
	buf.Write(payload)
}

// writeLengthPrefixed writes [len_bytes:u8][len:big-endian][utf-8 bytes]
// per spec §6's String constant shape, using the minimal number of
// length bytes that can hold len(s).
func writeLengthPrefixed(buf *bytes.Buffer, s string) {
	n := uint64(len(s))
	lenBytes := minimalByteLen(n)
	buf.WriteByte(byte(lenBytes))
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], n)
	buf.Write(tmp[8-lenBytes:])
	buf.WriteString(s)
}

func minimalByteLen(n uint64) int {
	if n == 0 {
		return 1
	}
	l := 0
	for n > 0 {
		l++
		n >>= 8
	}
	return l
}
