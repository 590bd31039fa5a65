package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/insts"
	"github.com/sarchlab/rv32pipe/isa"
)

// LineAssembler is a minimal two-pass assembler for the RV32I mnemonic
// set, plus labels and .word/.byte data directives. It is not a
// general-purpose assembler: no macros, no expression evaluation beyond
// decimal/hex literals and label references.
type LineAssembler struct{}

// NewLineAssembler creates a LineAssembler.
func NewLineAssembler() *LineAssembler { return &LineAssembler{} }

type pendingItem struct {
	lineNo   int
	kind     string // "inst", "word", "byte"
	address  uint32
	mnemonic string
	operands []string
	arg      string
}

// Assemble turns source into a prepared Image. Diagnostics accumulate
// per-line problems; a non-nil error is returned iff at least one
// diagnostic was recorded.
func (a *LineAssembler) Assemble(source string) (Image, []Diagnostic, error) {
	labels := map[string]uint32{}
	var items []pendingItem
	var diags []Diagnostic

	segment := "text"
	textPC := uint32(emu.TextSegmentStart)
	dataPC := uint32(emu.DataSegmentStart)

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		switch line {
		case ".text":
			segment = "text"
			continue
		case ".data":
			segment = "data"
			continue
		}

		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			label := strings.TrimSpace(line[:idx])
			rest := strings.TrimSpace(line[idx+1:])
			if label == "" || strings.ContainsAny(label, " \t") {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("malformed label %q", line[:idx])})
				continue
			}
			if _, exists := labels[label]; exists {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("label %q redefined", label)})
			}
			if segment == "text" {
				labels[label] = textPC
			} else {
				labels[label] = dataPC
			}
			if rest == "" {
				continue
			}
			line = rest
		}

		fields := strings.Fields(line)
		head := strings.ToLower(fields[0])
		rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

		switch head {
		case ".word":
			for _, v := range parseArgs(rest) {
				items = append(items, pendingItem{lineNo, "word", dataPC, "", nil, v})
				dataPC += 4
			}
		case ".byte":
			for _, v := range parseArgs(rest) {
				items = append(items, pendingItem{lineNo, "byte", dataPC, "", nil, v})
				dataPC++
			}
		default:
			if segment != "text" {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("instruction %q outside .text segment", head)})
				continue
			}
			items = append(items, pendingItem{lineNo, "inst", textPC, head, parseArgs(rest), ""})
			textPC += emu.InstructionSize
		}
	}

	img := Image{}
	decoder := insts.NewDecoder()

	for _, it := range items {
		switch it.kind {
		case "word":
			v, err := parseConstant(it.arg, labels)
			if err != nil {
				diags = append(diags, Diagnostic{it.lineNo, err.Error()})
				continue
			}
			for i := uint32(0); i < 4; i++ {
				img.Data = append(img.Data, DataEntry{Address: it.address + i, Value: byte(v >> (8 * i))})
			}
		case "byte":
			v, err := parseConstant(it.arg, labels)
			if err != nil {
				diags = append(diags, Diagnostic{it.lineNo, err.Error()})
				continue
			}
			img.Data = append(img.Data, DataEntry{Address: it.address, Value: byte(v)})
		case "inst":
			word, err := encodeInstruction(it.mnemonic, it.operands, it.address, labels)
			if err != nil {
				diags = append(diags, Diagnostic{it.lineNo, err.Error()})
				continue
			}
			inst, err := decoder.Decode(word)
			text := fmt.Sprintf("0x%08x", word)
			if err == nil {
				text = inst.String()
			}
			img.Code = append(img.Code, CodeEntry{Address: it.address, Word: word, Text: text})
		}
	}

	if len(diags) > 0 {
		return Image{}, diags, fmt.Errorf("assembly failed with %d error(s): %s", len(diags), diags[0].Message)
	}
	return img, nil, nil
}

func stripComment(line string) string {
	for _, marker := range []string{"#", "//", ";"} {
		if idx := strings.Index(line, marker); idx >= 0 {
			line = line[:idx]
		}
	}
	return line
}

func parseArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseConstant(s string, labels map[string]uint32) (int64, error) {
	if addr, ok := labels[s]; ok {
		return int64(addr), nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid constant %q", s)
	}
	return v, nil
}

// parseImmediate resolves an immediate operand: a label (resolved
// PC-relative when pcRelative is set, absolute otherwise) or a decimal/hex
// literal.
func parseImmediate(s string, pc uint32, labels map[string]uint32, pcRelative bool) (int32, error) {
	if addr, ok := labels[s]; ok {
		if pcRelative {
			return int32(int64(addr) - int64(pc)), nil
		}
		return int32(addr), nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate %q", s)
	}
	return int32(v), nil
}

func parseReg(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != 'x' && s[0] != 'X') {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	return uint8(n), nil
}

// parseOffset splits "imm(reg)" into its immediate text and register text.
func parseOffset(s string) (immText, regText string, err error) {
	open := strings.IndexByte(s, '(')
	shut := strings.IndexByte(s, ')')
	if open < 0 || shut < open {
		return "", "", fmt.Errorf("expected offset(register), got %q", s)
	}
	return strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1 : shut]), nil
}

var mnemonicByName = buildMnemonicTable()

func buildMnemonicTable() map[string]isa.Encoding {
	m := make(map[string]isa.Encoding, len(isa.Table))
	for _, e := range isa.Table {
		m[e.Mnemonic.String()] = e
	}
	return m
}

func isLoadMnemonic(name string) bool {
	switch name {
	case "lb", "lh", "lw", "ld":
		return true
	default:
		return false
	}
}

func isShiftImmMnemonic(name string) bool {
	switch name {
	case "slli", "srli", "srai":
		return true
	default:
		return false
	}
}

// encodeInstruction assembles one mnemonic and its operand list into a
// 32-bit instruction word at address pc, resolving any label operands
// against labels.
func encodeInstruction(mnemonic string, operands []string, pc uint32, labels map[string]uint32) (uint32, error) {
	enc, ok := mnemonicByName[mnemonic]
	if !ok {
		return 0, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	switch enc.Category {
	case isa.CategoryR:
		if len(operands) != 3 {
			return 0, fmt.Errorf("%s: expected 3 operands, got %d", mnemonic, len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseReg(operands[1])
		if err != nil {
			return 0, err
		}
		rs2, err := parseReg(operands[2])
		if err != nil {
			return 0, err
		}
		return enc.Opcode | uint32(rd)<<7 | enc.Funct3<<12 | uint32(rs1)<<15 |
			uint32(rs2)<<20 | enc.Funct7<<25, nil

	case isa.CategoryI:
		if isLoadMnemonic(mnemonic) {
			if len(operands) != 2 {
				return 0, fmt.Errorf("%s: expected 2 operands, got %d", mnemonic, len(operands))
			}
			rd, err := parseReg(operands[0])
			if err != nil {
				return 0, err
			}
			immText, regText, err := parseOffset(operands[1])
			if err != nil {
				return 0, err
			}
			rs1, err := parseReg(regText)
			if err != nil {
				return 0, err
			}
			imm, err := parseImmediate(immText, pc, labels, false)
			if err != nil {
				return 0, err
			}
			return enc.Opcode | uint32(rd)<<7 | enc.Funct3<<12 | uint32(rs1)<<15 |
				(uint32(imm)&0xFFF)<<20, nil
		}

		if len(operands) != 3 {
			return 0, fmt.Errorf("%s: expected 3 operands, got %d", mnemonic, len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseReg(operands[1])
		if err != nil {
			return 0, err
		}

		if isShiftImmMnemonic(mnemonic) {
			shamt, err := parseImmediate(operands[2], pc, labels, false)
			if err != nil {
				return 0, err
			}
			imm12 := enc.Funct7<<5 | uint32(shamt)&0x1F
			return enc.Opcode | uint32(rd)<<7 | enc.Funct3<<12 | uint32(rs1)<<15 | imm12<<20, nil
		}

		imm, err := parseImmediate(operands[2], pc, labels, false)
		if err != nil {
			return 0, err
		}
		return enc.Opcode | uint32(rd)<<7 | enc.Funct3<<12 | uint32(rs1)<<15 |
			(uint32(imm)&0xFFF)<<20, nil

	case isa.CategoryS:
		if len(operands) != 2 {
			return 0, fmt.Errorf("%s: expected 2 operands, got %d", mnemonic, len(operands))
		}
		rs2, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		immText, regText, err := parseOffset(operands[1])
		if err != nil {
			return 0, err
		}
		rs1, err := parseReg(regText)
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(immText, pc, labels, false)
		if err != nil {
			return 0, err
		}
		u := uint32(imm)
		return enc.Opcode | (u&0x1F)<<7 | enc.Funct3<<12 | uint32(rs1)<<15 |
			uint32(rs2)<<20 | ((u>>5)&0x7F)<<25, nil

	case isa.CategorySB:
		if len(operands) != 3 {
			return 0, fmt.Errorf("%s: expected 3 operands, got %d", mnemonic, len(operands))
		}
		rs1, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		rs2, err := parseReg(operands[1])
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(operands[2], pc, labels, true)
		if err != nil {
			return 0, err
		}
		u := uint32(imm)
		return enc.Opcode | ((u>>11)&0x1)<<7 | ((u>>1)&0xF)<<8 | enc.Funct3<<12 |
			uint32(rs1)<<15 | uint32(rs2)<<20 | ((u>>5)&0x3F)<<25 | ((u>>12)&0x1)<<31, nil

	case isa.CategoryU:
		if len(operands) != 2 {
			return 0, fmt.Errorf("%s: expected 2 operands, got %d", mnemonic, len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(operands[1], pc, labels, false)
		if err != nil {
			return 0, err
		}
		return enc.Opcode | uint32(rd)<<7 | (uint32(imm)<<12)&0xFFFFF000, nil

	case isa.CategoryUJ:
		if len(operands) != 2 {
			return 0, fmt.Errorf("%s: expected 2 operands, got %d", mnemonic, len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return 0, err
		}
		imm, err := parseImmediate(operands[1], pc, labels, true)
		if err != nil {
			return 0, err
		}
		u := uint32(imm)
		return enc.Opcode | uint32(rd)<<7 | ((u>>12)&0xFF)<<12 | ((u>>11)&0x1)<<20 |
			((u>>1)&0x3FF)<<21 | ((u>>20)&0x1)<<31, nil

	default:
		return 0, fmt.Errorf("unknown category for mnemonic %q", mnemonic)
	}
}
