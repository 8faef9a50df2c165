package verify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports an assembly line the loader cannot read.
	ErrSyntax = errors.New("assembly syntax error")
	// ErrDuplicateLabel reports a label declared twice.
	ErrDuplicateLabel = errors.New("duplicate label")
)

// variableBase is the first RAM address handed to assembly variables.
const variableBase = 16

var predefined = map[string]int{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
}

func init() {
	for i := 0; i < 16; i++ {
		predefined["R"+strconv.Itoa(i)] = i
	}
}

// Inst is one loaded Hack instruction.
type Inst struct {
	IsA   bool
	Value int // Resolved address or literal of an A-instruction

	Dest string
	Comp string
	Jump string

	Line int    // 1-based line in the assembly listing
	Text string // Instruction as written
}

// Program is an assembly listing with all symbols resolved.
type Program struct {
	Insts     []Inst
	Labels    map[string]int
	Variables map[string]int
}

// LoadProgram resolves labels, predefined symbols and variables of an
// assembly listing so that it can be executed.
func LoadProgram(lines []string) (*Program, error) {
	p := &Program{
		Labels:    make(map[string]int),
		Variables: make(map[string]int),
	}

	type pending struct {
		line int
		text string
	}
	var code []pending

	for n, raw := range lines {
		text := stripComment(raw)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "(") {
			name, ok := parseLabel(text)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: %q", ErrSyntax, n+1, raw)
			}
			if _, dup := p.Labels[name]; dup {
				return nil, fmt.Errorf("%w: line %d: %s", ErrDuplicateLabel, n+1, name)
			}
			p.Labels[name] = len(code)
			continue
		}

		code = append(code, pending{line: n + 1, text: text})
	}

	next := variableBase
	for _, c := range code {
		inst := Inst{Line: c.line, Text: c.text}

		if strings.HasPrefix(c.text, "@") {
			inst.IsA = true
			inst.Value = p.resolve(c.text[1:], &next)
		} else if err := parseC(c.text, &inst); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, c.line, err)
		}

		p.Insts = append(p.Insts, inst)
	}

	return p, nil
}

func (p *Program) resolve(sym string, next *int) int {
	if v, err := strconv.Atoi(sym); err == nil {
		return v
	}
	if v, ok := predefined[sym]; ok {
		return v
	}
	if v, ok := p.Labels[sym]; ok {
		return v
	}
	if v, ok := p.Variables[sym]; ok {
		return v
	}

	p.Variables[sym] = *next
	*next++

	return p.Variables[sym]
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseLabel(text string) (string, bool) {
	if !strings.HasSuffix(text, ")") || len(text) < 3 {
		return "", false
	}
	return text[1 : len(text)-1], true
}

var validJumps = map[string]bool{
	"": true, "JGT": true, "JEQ": true, "JGE": true,
	"JLT": true, "JNE": true, "JLE": true, "JMP": true,
}

func parseC(text string, inst *Inst) error {
	rest := text
	if dest, after, ok := strings.Cut(rest, "="); ok {
		inst.Dest = dest
		rest = after
	}

	comp, jump, _ := strings.Cut(rest, ";")
	inst.Comp = comp
	inst.Jump = jump

	for _, r := range inst.Dest {
		if r != 'A' && r != 'D' && r != 'M' {
			return fmt.Errorf("invalid destination %q", inst.Dest)
		}
	}
	if !validJumps[inst.Jump] {
		return fmt.Errorf("invalid jump %q", inst.Jump)
	}
	if _, err := compute(inst.Comp, 0, 0, 0); err != nil {
		return err
	}

	return nil
}

// compute evaluates a comp field on 16-bit registers.
func compute(comp string, a, d, m int16) (int16, error) {
	switch comp {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	case "-1":
		return -1, nil
	case "D":
		return d, nil
	case "A":
		return a, nil
	case "M":
		return m, nil
	case "!D":
		return ^d, nil
	case "!A":
		return ^a, nil
	case "!M":
		return ^m, nil
	case "-D":
		return -d, nil
	case "-A":
		return -a, nil
	case "-M":
		return -m, nil
	case "D+1":
		return d + 1, nil
	case "A+1":
		return a + 1, nil
	case "M+1":
		return m + 1, nil
	case "D-1":
		return d - 1, nil
	case "A-1":
		return a - 1, nil
	case "M-1":
		return m - 1, nil
	case "D+A", "A+D":
		return d + a, nil
	case "D+M", "M+D":
		return d + m, nil
	case "D-A":
		return d - a, nil
	case "D-M":
		return d - m, nil
	case "A-D":
		return a - d, nil
	case "M-D":
		return m - d, nil
	case "D&A", "A&D":
		return d & a, nil
	case "D&M", "M&D":
		return d & m, nil
	case "D|A", "A|D":
		return d | a, nil
	case "D|M", "M|D":
		return d | m, nil
	}

	return 0, fmt.Errorf("invalid computation %q", comp)
}

func (i Inst) readsM() bool {
	return strings.Contains(i.Comp, "M")
}

func (i Inst) jumps(v int16) bool {
	switch i.Jump {
	case "JGT":
		return v > 0
	case "JEQ":
		return v == 0
	case "JGE":
		return v >= 0
	case "JLT":
		return v < 0
	case "JNE":
		return v != 0
	case "JLE":
		return v <= 0
	case "JMP":
		return true
	}
	return false
}
