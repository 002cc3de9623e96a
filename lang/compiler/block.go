package compiler

import (
	"github.com/dolthub/swiss"
)

// LocalBlock (CodeBlock in the data model) is one compilation unit: a
// constant pool, an instruction stream, a locals map and a globals
// list, plus operand/return type names and the observed peak stack
// depth. Constant-pool and local-name lookups use a
// swiss.Map for O(1) dedup/slot lookup on the hot emission path.
type LocalBlock struct {
	Name     string
	Filename string

	constants   []Element
	constantIdx *swiss.Map[Element, int]

	Instructions []byte

	Globals    []string
	globalIdx  map[string]int

	locals     []string
	localIdx   *swiss.Map[string, int]

	OperandType string
	ReturnType  string

	StackDepth int

	currentDepth int
	lastLine     int
	lastLinePos  int // offset in Instructions of the last emitted SET_LINE opcode byte, -1 if none
}

// NewLocalBlock returns an empty block ready for emission.
func NewLocalBlock(name, filename string) *LocalBlock {
	return &LocalBlock{
		Name:        name,
		Filename:    filename,
		constantIdx: swiss.NewMap[Element, int](8),
		globalIdx:   make(map[string]int),
		localIdx:    swiss.NewMap[string, int](8),
		lastLinePos: -1,
	}
}

// Constants returns the deduplicated constant pool in insertion order.
func (b *LocalBlock) Constants() []Element { return b.constants }

// Locals returns local names in slot-index order.
func (b *LocalBlock) Locals() []string { return b.locals }

// PushConst returns e's index in the pool, appending it if this is the
// first occurrence (structural/hash equality per Element.Equal).
func (b *LocalBlock) PushConst(e Element) int {
	if ix, ok := b.constantIdx.Get(e); ok {
		return ix
	}
	ix := len(b.constants)
	b.constants = append(b.constants, e)
	b.constantIdx.Put(e, ix)
	return ix
}

// LocalIndex returns name's local slot, and whether it is already
// declared in this block.
func (b *LocalBlock) LocalIndex(name string) (int, bool) {
	return b.localIdx.Get(name)
}

// DeclareLocal allocates the next local slot for name. Callers must
// check LocalIndex first: a block never rebinds a local name, and
// enforcing that is the caller's (compiler's) responsibility per the
// data model's rebind invariant.
func (b *LocalBlock) DeclareLocal(name string) int {
	ix := len(b.locals)
	b.locals = append(b.locals, name)
	b.localIdx.Put(name, ix)
	return ix
}

// GlobalIndex returns name's index in the globals list, appending it
// if this is the first reference from this block.
func (b *LocalBlock) GlobalIndex(name string) int {
	if ix, ok := b.globalIdx[name]; ok {
		return ix
	}
	ix := len(b.Globals)
	b.Globals = append(b.Globals, name)
	b.globalIdx[name] = ix
	return ix
}

// emit appends the operand-less op to the instruction stream, tracking
// current/peak stack depth; emitArg appends an op together with its
// big-endian 16-bit operand. DUP_N's
// variable stack effect must be supplied explicitly via emitDupN.
func (b *LocalBlock) emit(op Opcode) {
	b.Instructions = append(b.Instructions, byte(op))
	b.applyDepth(stackEffect[op])
}

func (b *LocalBlock) emitArg(op Opcode, arg uint16) {
	b.Instructions = append(b.Instructions, byte(op), byte(arg>>8), byte(arg))
	b.applyDepth(stackEffect[op])
}

func (b *LocalBlock) emitDupN(n uint16) {
	b.Instructions = append(b.Instructions, byte(DUP_N), byte(n>>8), byte(n))
	b.applyDepth(int8(n))
}

func (b *LocalBlock) applyDepth(delta int8) {
	b.currentDepth += int(delta)
	if b.currentDepth > b.StackDepth {
		b.StackDepth = b.currentDepth
	}
}

// setLine emits SET_LINE only when line differs from the last one
// recorded, and overwrites (rather than duplicates) a SET_LINE that
// turned out to precede no intervening instruction.
func (b *LocalBlock) setLine(line int) {
	if line == b.lastLine {
		return
	}
	if b.lastLinePos >= 0 && b.lastLinePos == len(b.Instructions)-3 {
		// The previous SET_LINE was never followed by another
		// instruction; rewrite it in place instead of stacking a second.
		b.Instructions[b.lastLinePos+1] = byte(uint16(line) >> 8)
		b.Instructions[b.lastLinePos+2] = byte(uint16(line))
		b.lastLine = line
		return
	}
	b.lastLinePos = len(b.Instructions)
	b.emitArg(SET_LINE, uint16(line))
	b.lastLine = line
}

// lastPushConstIndex reports whether the instruction stream's last
// emitted instruction is a PUSH_CONST, and if so for which index — the
// condition under which the emitter's CSE peephole can reuse the
// already-pushed value via DUP instead of pushing it again.
func (b *LocalBlock) lastPushConstIndex() (ix uint16, ok bool) {
	n := len(b.Instructions)
	if n < 3 {
		return 0, false
	}
	if Opcode(b.Instructions[n-3]) != PUSH_CONST {
		return 0, false
	}
	return uint16(b.Instructions[n-2])<<8 | uint16(b.Instructions[n-1]), true
}

// PushConstInstr emits PUSH_CONST ix, or, when the immediately
// preceding instruction already pushed that same index with no
// intervening stack change, a DUP instead — the peephole that collapses
// two consecutive identical pushes to one PUSH_CONST whose value is
// reused, rather than looked up from the pool twice.
func (b *LocalBlock) PushConstInstr(ix int) {
	if prev, ok := b.lastPushConstIndex(); ok && int(prev) == ix {
		b.emit(DUP)
		return
	}
	b.emitArg(PUSH_CONST, uint16(ix))
}
