package marshal

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/valhalla-lang/valhallac/lang/compiler"
)

// DecodedBlock mirrors compiler.LocalBlock's shape for a block read back
// off the wire: the emitter-only bookkeeping (dedup indices, current
// stack depth) has no reason to exist once a block is fully formed, so
// this is a plain value type rather than a second LocalBlock constructor.
type DecodedBlock struct {
	Name     string
	Filename string

	StackDepth int

	Constants    []compiler.Element
	Locals       []string
	Globals      []string
	Instructions []byte
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("marshal: unexpected end of input at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("marshal: unexpected end of input at offset %d (need %d bytes)", r.pos, n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) cString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", fmt.Errorf("marshal: unterminated string starting at offset %d", start)
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Unmarshal decodes an image produced by Marshal into its root
// DecodedBlock, recursively decoding any nested Code constants. It
// rejects any version triple other than the one Marshal currently
// writes, since this package has never needed to read an older image.
func Unmarshal(data []byte) (*DecodedBlock, error) {
	r := &reader{buf: data}
	ver, err := r.take(3)
	if err != nil {
		return nil, err
	}
	if ver[0] != Version[0] || ver[1] != Version[1] || ver[2] != Version[2] {
		return nil, fmt.Errorf("marshal: unsupported image version %d.%d.%d", ver[0], ver[1], ver[2])
	}
	return decodeBlock(r)
}

func decodeBlock(r *reader) (*DecodedBlock, error) {
	filename, err := r.cString()
	if err != nil {
		return nil, err
	}
	name, err := r.cString()
	if err != nil {
		return nil, err
	}
	depth, err := r.u16()
	if err != nil {
		return nil, err
	}

	b := &DecodedBlock{Name: name, Filename: filename, StackDepth: int(depth)}

	if err := expectByte(r, secConstants); err != nil {
		return nil, err
	}
	for {
		tag, err := r.byte()
		if err != nil {
			return nil, err
		}
		if tag == sectionEnd {
			break
		}
		e, err := decodeElement(r, tag)
		if err != nil {
			return nil, err
		}
		b.Constants = append(b.Constants, e)
	}

	if err := expectByte(r, secLocals); err != nil {
		return nil, err
	}
	names, err := decodeNameList(r)
	if err != nil {
		return nil, err
	}
	b.Locals = names

	if err := expectByte(r, secGlobals); err != nil {
		return nil, err
	}
	names, err = decodeNameList(r)
	if err != nil {
		return nil, err
	}
	b.Globals = names

	if err := expectByte(r, secInstrs); err != nil {
		return nil, err
	}
	instrs, err := decodeInstructions(r)
	if err != nil {
		return nil, err
	}
	b.Instructions = instrs

	return b, nil
}

func expectByte(r *reader, want byte) error {
	got, err := r.byte()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("marshal: expected section marker 0x%02x, got 0x%02x at offset %d", want, got, r.pos-1)
	}
	return nil
}

func decodeNameList(r *reader) ([]string, error) {
	var names []string
	for {
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		if b == sectionEnd {
			return names, nil
		}
		r.pos--
		s, err := r.cString()
		if err != nil {
			return nil, err
		}
		names = append(names, s)
	}
}

// decodeInstructions reads opcodes up to and including the sectionEnd
// (EOI) byte, using compiler.TakesOperand to know how many operand bytes
// follow each opcode it did not itself emit.
func decodeInstructions(r *reader) ([]byte, error) {
	start := r.pos
	for {
		op, err := r.byte()
		if err != nil {
			return nil, err
		}
		if op == sectionEnd {
			return r.buf[start : r.pos-1 : r.pos-1], nil
		}
		if compiler.TakesOperand(compiler.Opcode(op)) {
			if _, err := r.take(2); err != nil {
				return nil, err
			}
		}
	}
}

func decodeElement(r *reader, tag byte) (compiler.Element, error) {
	switch tag {
	case tagNatural:
		v, err := decodeTrimmedUnsigned(r)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.NaturalElement(v), nil
	case tagInteger:
		v, err := decodeTrimmedSigned(r)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.IntegerElement(v), nil
	case tagReal:
		n, err := r.byte()
		if err != nil {
			return compiler.Element{}, err
		}
		if n != 8 {
			return compiler.Element{}, fmt.Errorf("marshal: Real constant with non-8-byte payload length %d", n)
		}
		b, err := r.take(8)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.RealElement(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case tagString:
		s, err := decodeLengthPrefixed(r)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.StringElement(s), nil
	case tagSymbol:
		s, err := decodeLengthPrefixed(r)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.SymbolElement(s), nil
	case tagCode:
		nested, err := decodeBlock(r)
		if err != nil {
			return compiler.Element{}, err
		}
		return compiler.CodeElement(rebuildBlock(nested)), nil
	case tagNil:
		return compiler.NilElement(), nil
	case tagSet:
		return compiler.Element{}, fmt.Errorf("marshal: Set constants have no wire encoding")
	default:
		return compiler.Element{}, fmt.Errorf("marshal: unknown constant tag 0x%02x", tag)
	}
}

func decodeTrimmedUnsigned(r *reader) (uint64, error) {
	n, err := r.byte()
	if err != nil {
		return 0, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v, nil
}

func decodeTrimmedSigned(r *reader) (int64, error) {
	n, err := r.byte()
	if err != nil {
		return 0, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, by := range b {
		v = v<<8 | int64(by)
	}
	return v, nil
}

func decodeLengthPrefixed(r *reader) (string, error) {
	lenBytes, err := r.byte()
	if err != nil {
		return "", err
	}
	lb, err := r.take(int(lenBytes))
	if err != nil {
		return "", err
	}
	var n uint64
	for _, by := range lb {
		n = n<<8 | uint64(by)
	}
	sb, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(sb), nil
}

// rebuildBlock reconstructs a *compiler.LocalBlock from a decoded nested
// block so that ElemCode constants hold the same type whether they came
// from the emitter or from Unmarshal. The block's own emitter-only
// bookkeeping (dedup indices) is irrelevant once the instruction stream
// is already fixed, so only the fields a consumer can observe are
// repopulated.
func rebuildBlock(d *DecodedBlock) *compiler.LocalBlock {
	b := compiler.NewLocalBlock(d.Name, d.Filename)
	b.Instructions = d.Instructions
	b.StackDepth = d.StackDepth
	for _, c := range d.Constants {
		b.PushConst(c)
	}
	for _, name := range d.Locals {
		b.DeclareLocal(name)
	}
	for _, name := range d.Globals {
		b.GlobalIndex(name)
	}
	return b
}
