// Package metering instruments a wasm module for deterministic compute
// gas. A mutable i64 global holding the remaining gas is appended and
// exported; every function entry and every loop header gets a short charge
// sequence that subtracts the cost of the upcoming instruction segment and
// traps when the global runs dry. Charging only at entries and backward
// branch targets keeps the overhead low while still bounding every
// execution path. The host seeds the global before a call and settles the
// consumed amount into its gas meter afterwards.
package metering

import (
	"bytes"
	"fmt"
	"math"
)

// GasGlobal is the export name of the injected gas counter.
const GasGlobal = "__host_gas"

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

// Section ids of the wasm binary format.
const (
	secCustom    = 0
	secType      = 1
	secImport    = 2
	secFunction  = 3
	secTable     = 4
	secMemory    = 5
	secGlobal    = 6
	secExport    = 7
	secStart     = 8
	secElem      = 9
	secCode      = 10
	secData      = 11
	secDataCount = 12
)

// sectionRank maps a section id to its mandatory position in the module.
// The data-count section sits between element and code.
func sectionRank(id byte) int {
	switch id {
	case secDataCount:
		return 10
	case secCode:
		return 11
	case secData:
		return 12
	default:
		return int(id)
	}
}

// Instrument rewrites the module, charging opCost gas per wasm instruction
// in the scheme described in the package comment. The result exports
// GasGlobal as a mutable i64.
func Instrument(module []byte, opCost uint64) ([]byte, error) {
	if opCost == 0 {
		opCost = 1
	}
	if len(module) < 8 || !bytes.Equal(module[:4], wasmMagic) || !bytes.Equal(module[4:8], wasmVersion) {
		return nil, fmt.Errorf("not a wasm module")
	}

	gasIndex, err := countGlobals(module)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(module)+len(module)/4)
	out = append(out, module[:8]...)
	globalDone, exportDone := false, false
	off := 8
	for off < len(module) {
		id := module[off]
		off++
		size, next, err := readULEB(module, off)
		if err != nil {
			return nil, fmt.Errorf("section %d size: %w", id, err)
		}
		off = next
		if size > uint64(len(module)-off) {
			return nil, fmt.Errorf("section %d truncated", id)
		}
		payload := module[off : off+int(size)]
		off += int(size)

		// a missing global or export section has to be created at its
		// mandated position, before the first later section
		if id != secCustom {
			if !globalDone && sectionRank(id) > sectionRank(secGlobal) {
				out = appendSection(out, secGlobal, gasGlobalEntry(nil, 1))
				globalDone = true
			}
			if !exportDone && sectionRank(id) > sectionRank(secExport) {
				out = appendSection(out, secExport, gasExportEntry(nil, 1, gasIndex))
				exportDone = true
			}
		}

		switch id {
		case secGlobal:
			payload, err = bumpVec(payload, gasGlobalEntry)
			globalDone = true
		case secExport:
			payload, err = bumpVec(payload, func(dst []byte, count uint64) []byte {
				return gasExportEntry(dst, count, gasIndex)
			})
			exportDone = true
		case secCode:
			payload, err = rewriteCodeSection(payload, gasIndex, opCost)
		}
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		out = appendSection(out, id, payload)
	}
	if !globalDone {
		out = appendSection(out, secGlobal, gasGlobalEntry(nil, 1))
	}
	if !exportDone {
		out = appendSection(out, secExport, gasExportEntry(nil, 1, gasIndex))
	}
	return out, nil
}

func appendSection(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = appendULEB(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// bumpVec rewrites a vector-shaped section payload: count+1, the original
// entries, then one entry appended by add (which receives the new count).
func bumpVec(payload []byte, add func(dst []byte, count uint64) []byte) ([]byte, error) {
	count, off, err := readULEB(payload, 0)
	if err != nil {
		return nil, err
	}
	out := appendULEB(nil, count+1)
	out = append(out, payload[off:]...)
	return add(out, count+1), nil
}

// gasGlobalEntry appends the gas counter definition: mutable i64, init 0.
func gasGlobalEntry(dst []byte, _ uint64) []byte {
	return append(dst, 0x7E, 0x01, 0x42, 0x00, 0x0B)
}

// gasExportEntry appends the export record for the gas counter.
func gasExportEntry(dst []byte, _ uint64, gasIndex uint64) []byte {
	dst = appendULEB(dst, uint64(len(GasGlobal)))
	dst = append(dst, GasGlobal...)
	dst = append(dst, 0x03) // global
	return appendULEB(dst, gasIndex)
}

// countGlobals returns the index the injected global will occupy: imported
// globals plus defined globals.
func countGlobals(module []byte) (uint64, error) {
	var imported, defined uint64
	off := 8
	for off < len(module) {
		id := module[off]
		off++
		size, next, err := readULEB(module, off)
		if err != nil {
			return 0, err
		}
		off = next
		if size > uint64(len(module)-off) {
			return 0, fmt.Errorf("section %d truncated", id)
		}
		payload := module[off : off+int(size)]
		off += int(size)

		switch id {
		case secImport:
			imported, err = countImportedGlobals(payload)
			if err != nil {
				return 0, err
			}
		case secGlobal:
			defined, _, err = readULEB(payload, 0)
			if err != nil {
				return 0, err
			}
		}
	}
	return imported + defined, nil
}

func countImportedGlobals(payload []byte) (uint64, error) {
	count, off, err := readULEB(payload, 0)
	if err != nil {
		return 0, err
	}
	var globals uint64
	for i := uint64(0); i < count; i++ {
		for j := 0; j < 2; j++ { // module and field name
			n, next, err := readULEB(payload, off)
			if err != nil {
				return 0, err
			}
			off = next + int(n)
		}
		if off >= len(payload) {
			return 0, fmt.Errorf("import %d truncated", i)
		}
		kind := payload[off]
		off++
		switch kind {
		case 0x00: // function
			_, off, err = readULEB(payload, off)
		case 0x01: // table
			off++ // reftype
			off, err = skipLimits(payload, off)
		case 0x02: // memory
			off, err = skipLimits(payload, off)
		case 0x03: // global
			if off+2 > len(payload) {
				return 0, fmt.Errorf("global import %d truncated", i)
			}
			off += 2 // valtype, mutability
			globals++
		default:
			return 0, fmt.Errorf("import %d: unknown kind 0x%02x", i, kind)
		}
		if err != nil {
			return 0, err
		}
	}
	return globals, nil
}

func skipLimits(payload []byte, off int) (int, error) {
	if off >= len(payload) {
		return 0, fmt.Errorf("limits truncated")
	}
	flags := payload[off]
	off++
	_, off, err := readULEB(payload, off)
	if err != nil {
		return 0, err
	}
	if flags&0x01 != 0 {
		_, off, err = readULEB(payload, off)
		if err != nil {
			return 0, err
		}
	}
	return off, nil
}

func rewriteCodeSection(payload []byte, gasIndex, opCost uint64) ([]byte, error) {
	count, off, err := readULEB(payload, 0)
	if err != nil {
		return nil, err
	}
	out := appendULEB(nil, count)
	for i := uint64(0); i < count; i++ {
		size, next, err := readULEB(payload, off)
		if err != nil {
			return nil, fmt.Errorf("function %d size: %w", i, err)
		}
		off = next
		if size > uint64(len(payload)-off) {
			return nil, fmt.Errorf("function %d truncated", i)
		}
		body, err := instrumentBody(payload[off:off+int(size)], gasIndex, opCost)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		off += int(size)
		out = appendULEB(out, uint64(len(body)))
		out = append(out, body...)
	}
	if off != len(payload) {
		return nil, fmt.Errorf("%d trailing bytes in code section", len(payload)-off)
	}
	return out, nil
}

// instr is one decoded instruction: its opcode and byte range in the expr.
type instr struct {
	op         byte
	start, end int
}

func instrumentBody(body []byte, gasIndex, opCost uint64) ([]byte, error) {
	localCount, off, err := readULEB(body, 0)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < localCount; i++ {
		_, next, err := readULEB(body, off)
		if err != nil {
			return nil, err
		}
		off = next + 1 // valtype
	}
	if off > len(body) {
		return nil, fmt.Errorf("locals truncated")
	}
	locals := body[:off]
	expr := body[off:]

	instrs, err := decodeExpr(expr)
	if err != nil {
		return nil, err
	}

	// match each loop with its end to size the per-iteration charge
	loopCost := make(map[int]uint64) // instr index of loop -> cost
	var open []int
	for i, ins := range instrs {
		switch ins.op {
		case 0x02, 0x03, 0x04: // block, loop, if
			open = append(open, i)
		case 0x0B: // end
			if len(open) == 0 {
				break // the final end of the body
			}
			top := open[len(open)-1]
			open = open[:len(open)-1]
			if instrs[top].op == 0x03 {
				loopCost[top], err = segmentCost(uint64(i-top), opCost)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	entryCost, err := segmentCost(uint64(len(instrs)), opCost)
	if err != nil {
		return nil, err
	}

	out := append([]byte{}, locals...)
	out = appendCharge(out, gasIndex, entryCost)
	for i, ins := range instrs {
		out = append(out, expr[ins.start:ins.end]...)
		if cost, ok := loopCost[i]; ok {
			out = appendCharge(out, gasIndex, cost)
		}
	}
	return out, nil
}

func segmentCost(instructions, opCost uint64) (uint64, error) {
	if instructions == 0 {
		instructions = 1
	}
	if instructions > math.MaxInt64/opCost {
		return 0, fmt.Errorf("segment cost overflows")
	}
	return instructions * opCost, nil
}

// appendCharge emits the gas check for one segment:
//
//	if gas < cost { gas = 0; unreachable }
//	gas -= cost
//
// The sequence leaves the operand stack untouched, so it is valid at any
// position. Zeroing the global before the trap lets the host tell gas
// exhaustion apart from other traps.
func appendCharge(dst []byte, gasIndex, cost uint64) []byte {
	dst = append(dst, 0x23) // global.get
	dst = appendULEB(dst, gasIndex)
	dst = append(dst, 0x42) // i64.const
	dst = appendSLEB(dst, int64(cost))
	dst = append(dst, 0x54)       // i64.lt_u
	dst = append(dst, 0x04, 0x40) // if (no result)
	dst = append(dst, 0x42, 0x00) // i64.const 0
	dst = append(dst, 0x24)       // global.set
	dst = appendULEB(dst, gasIndex)
	dst = append(dst, 0x00) // unreachable
	dst = append(dst, 0x0B) // end
	dst = append(dst, 0x23) // global.get
	dst = appendULEB(dst, gasIndex)
	dst = append(dst, 0x42) // i64.const
	dst = appendSLEB(dst, int64(cost))
	dst = append(dst, 0x7D) // i64.sub
	dst = append(dst, 0x24) // global.set
	dst = appendULEB(dst, gasIndex)
	return dst
}

func decodeExpr(expr []byte) ([]instr, error) {
	var instrs []instr
	off := 0
	for off < len(expr) {
		start := off
		next, op, err := skipInstr(expr, off)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr{op: op, start: start, end: next})
		off = next
	}
	if len(instrs) == 0 || instrs[len(instrs)-1].op != 0x0B {
		return nil, fmt.Errorf("expression does not end in end opcode")
	}
	return instrs, nil
}

// skipInstr advances past one instruction and its immediates.
func skipInstr(expr []byte, off int) (int, byte, error) {
	op := expr[off]
	off++
	var err error
	switch {
	case op <= 0x01, op == 0x05, op == 0x0B, op == 0x0F: // control, no immediates
	case op >= 0x02 && op <= 0x04: // block, loop, if
		off, err = skipBlockType(expr, off)
	case op == 0x0C || op == 0x0D || op == 0x10 || op == 0x12: // br, br_if, call, return_call
		_, off, err = readULEB(expr, off)
	case op == 0x0E: // br_table
		var count uint64
		count, off, err = readULEB(expr, off)
		for i := uint64(0); err == nil && i <= count; i++ { // targets plus default
			_, off, err = readULEB(expr, off)
		}
	case op == 0x11 || op == 0x13: // call_indirect, return_call_indirect
		_, off, err = readULEB(expr, off)
		if err == nil {
			_, off, err = readULEB(expr, off)
		}
	case op == 0x1A || op == 0x1B: // drop, select
	case op == 0x1C: // select with explicit types
		var count uint64
		count, off, err = readULEB(expr, off)
		off += int(count)
	case op >= 0x20 && op <= 0x26: // local/global/table access
		_, off, err = readULEB(expr, off)
	case op >= 0x28 && op <= 0x3E: // memory load/store
		off, err = skipMemarg(expr, off)
	case op == 0x3F || op == 0x40: // memory.size, memory.grow
		off++
	case op == 0x41: // i32.const
		off, err = skipSLEB(expr, off)
	case op == 0x42: // i64.const
		off, err = skipSLEB(expr, off)
	case op == 0x43: // f32.const
		off += 4
	case op == 0x44: // f64.const
		off += 8
	case op >= 0x45 && op <= 0xC4: // numeric, no immediates
	case op == 0xD0: // ref.null
		off++
	case op == 0xD1: // ref.is_null
	case op == 0xD2: // ref.func
		_, off, err = readULEB(expr, off)
	case op == 0xFC:
		off, err = skipMiscInstr(expr, off)
	case op == 0xFD:
		off, err = skipVectorInstr(expr, off)
	default:
		return 0, 0, fmt.Errorf("unsupported opcode 0x%02x", op)
	}
	if err != nil {
		return 0, 0, err
	}
	if off > len(expr) {
		return 0, 0, fmt.Errorf("instruction 0x%02x truncated", op)
	}
	return off, op, nil
}

func skipBlockType(expr []byte, off int) (int, error) {
	if off >= len(expr) {
		return 0, fmt.Errorf("block type truncated")
	}
	// empty type and value types live in [0x40, 0x7F]; anything else is a
	// signed LEB type index
	if expr[off]&0xC0 == 0x40 {
		return off + 1, nil
	}
	return skipSLEB(expr, off)
}

func skipMemarg(expr []byte, off int) (int, error) {
	_, off, err := readULEB(expr, off) // alignment
	if err != nil {
		return 0, err
	}
	_, off, err = readULEB(expr, off) // offset
	return off, err
}

// skipMiscInstr handles the 0xFC prefix: saturating truncations and the
// bulk memory/table operations.
func skipMiscInstr(expr []byte, off int) (int, error) {
	sub, off, err := readULEB(expr, off)
	if err != nil {
		return 0, err
	}
	switch sub {
	case 0, 1, 2, 3, 4, 5, 6, 7: // trunc_sat, no immediates
		return off, nil
	case 8: // memory.init
		_, off, err = readULEB(expr, off)
		return off + 1, err
	case 9, 13: // data.drop, elem.drop
		_, off, err = readULEB(expr, off)
		return off, err
	case 10: // memory.copy
		return off + 2, nil
	case 11: // memory.fill
		return off + 1, nil
	case 12, 14: // table.init, table.copy
		_, off, err = readULEB(expr, off)
		if err != nil {
			return 0, err
		}
		_, off, err = readULEB(expr, off)
		return off, err
	case 15, 16, 17: // table.grow, table.size, table.fill
		_, off, err = readULEB(expr, off)
		return off, err
	default:
		return 0, fmt.Errorf("unsupported 0xFC opcode %d", sub)
	}
}

// skipVectorInstr handles the 0xFD SIMD prefix.
func skipVectorInstr(expr []byte, off int) (int, error) {
	sub, off, err := readULEB(expr, off)
	if err != nil {
		return 0, err
	}
	switch {
	case sub <= 11, sub == 92, sub == 93: // loads and stores
		return skipMemarg(expr, off)
	case sub == 12, sub == 13: // v128.const, i8x16.shuffle
		return off + 16, nil
	case sub >= 21 && sub <= 34: // lane extract/replace
		return off + 1, nil
	case sub >= 84 && sub <= 91: // lane load/store
		off, err = skipMemarg(expr, off)
		return off + 1, err
	default:
		return off, nil
	}
}

func readULEB(buf []byte, off int) (uint64, int, error) {
	var result uint64
	var shift uint
	for {
		if off >= len(buf) {
			return 0, 0, fmt.Errorf("uleb128 truncated")
		}
		b := buf[off]
		off++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, off, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, fmt.Errorf("uleb128 too long")
		}
	}
}

func skipSLEB(buf []byte, off int) (int, error) {
	for {
		if off >= len(buf) {
			return 0, fmt.Errorf("sleb128 truncated")
		}
		b := buf[off]
		off++
		if b&0x80 == 0 {
			return off, nil
		}
	}
}

func appendULEB(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

func appendSLEB(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
