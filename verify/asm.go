package verify

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Assembler errors.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// Addresses of the predefined registers.
const (
	SP   = 0
	LCL  = 1
	ARG  = 2
	THIS = 3
	THAT = 4

	Screen = 16384
	KBD    = 24576

	firstVariable = 16
	maxAddress    = 1<<15 - 1
)

// Destination bits of a C-instruction.
const (
	DestM uint8 = 1 << iota
	DestD
	DestA
)

// Inst is one assembled instruction.
type Inst struct {
	IsA   bool
	Value int

	Dest uint8
	Comp string
	Jump string

	// Line is the 1-based line of the source text.
	Line int

	comp  compFunc
	readM bool
}

// Image is an assembled program.
type Image struct {
	ROM []Inst

	// Labels maps each label to its ROM address.
	Labels map[string]int

	// Variables maps each allocated variable to its RAM address.
	Variables map[string]int
}

var predefined = map[string]int{
	"SP":     SP,
	"LCL":    LCL,
	"ARG":    ARG,
	"THIS":   THIS,
	"THAT":   THAT,
	"SCREEN": Screen,
	"KBD":    KBD,
}

func init() {
	for i := 0; i < 16; i++ {
		predefined["R"+strconv.Itoa(i)] = i
	}
}

// IsPredefined reports whether sym is a built-in symbol.
func IsPredefined(sym string) bool {
	_, ok := predefined[sym]
	return ok
}

type compFunc func(a, d, m int16) int16

var compTable = map[string]compFunc{
	"0":   func(a, d, m int16) int16 { return 0 },
	"1":   func(a, d, m int16) int16 { return 1 },
	"-1":  func(a, d, m int16) int16 { return -1 },
	"D":   func(a, d, m int16) int16 { return d },
	"A":   func(a, d, m int16) int16 { return a },
	"M":   func(a, d, m int16) int16 { return m },
	"!D":  func(a, d, m int16) int16 { return ^d },
	"!A":  func(a, d, m int16) int16 { return ^a },
	"!M":  func(a, d, m int16) int16 { return ^m },
	"-D":  func(a, d, m int16) int16 { return -d },
	"-A":  func(a, d, m int16) int16 { return -a },
	"-M":  func(a, d, m int16) int16 { return -m },
	"D+1": func(a, d, m int16) int16 { return d + 1 },
	"A+1": func(a, d, m int16) int16 { return a + 1 },
	"M+1": func(a, d, m int16) int16 { return m + 1 },
	"D-1": func(a, d, m int16) int16 { return d - 1 },
	"A-1": func(a, d, m int16) int16 { return a - 1 },
	"M-1": func(a, d, m int16) int16 { return m - 1 },
	"D+A": func(a, d, m int16) int16 { return d + a },
	"D+M": func(a, d, m int16) int16 { return d + m },
	"D-A": func(a, d, m int16) int16 { return d - a },
	"D-M": func(a, d, m int16) int16 { return d - m },
	"A-D": func(a, d, m int16) int16 { return a - d },
	"M-D": func(a, d, m int16) int16 { return m - d },
	"D&A": func(a, d, m int16) int16 { return d & a },
	"D&M": func(a, d, m int16) int16 { return d & m },
	"D|A": func(a, d, m int16) int16 { return d | a },
	"D|M": func(a, d, m int16) int16 { return d | m },
}

func init() {
	// Commutative spellings accepted by the standard assembler.
	for _, pair := range [][2]string{
		{"A+D", "D+A"}, {"M+D", "D+M"},
		{"A&D", "D&A"}, {"M&D", "D&M"},
		{"A|D", "D|A"}, {"M|D", "D|M"},
	} {
		compTable[pair[0]] = compTable[pair[1]]
	}
}

var jumps = map[string]bool{
	"": true, "JGT": true, "JEQ": true, "JGE": true,
	"JLT": true, "JNE": true, "JLE": true, "JMP": true,
}

// cleanLine strips comments and all whitespace.
func cleanLine(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.Join(strings.Fields(line), "")
}

func labelName(text string) (string, bool) {
	if len(text) > 2 && text[0] == '(' && text[len(text)-1] == ')' {
		return text[1 : len(text)-1], true
	}
	return "", false
}

func isSymbol(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '$', r == ':':
		default:
			return false
		}
	}
	return true
}

// Assemble translates Hack assembly text into an Image.
func Assemble(lines []string) (*Image, error) {
	img := &Image{
		Labels:    make(map[string]int),
		Variables: make(map[string]int),
	}

	type pending struct {
		text string
		line int
	}
	var body []pending

	for i, raw := range lines {
		text := cleanLine(raw)
		if text == "" {
			continue
		}

		if name, ok := labelName(text); ok {
			if !isSymbol(name) {
				return nil, errors.Wrapf(ErrSyntax, "line %d: bad label %q", i+1, name)
			}
			if _, dup := img.Labels[name]; dup {
				return nil, errors.Wrapf(ErrDuplicateLabel, "line %d: %s", i+1, name)
			}
			img.Labels[name] = len(body)
			continue
		}

		body = append(body, pending{text: text, line: i + 1})
	}

	next := firstVariable
	for _, p := range body {
		var inst Inst
		var err error
		if strings.HasPrefix(p.text, "@") {
			inst, err = img.parseA(p.text[1:], &next)
		} else {
			inst, err = parseC(p.text)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", p.line)
		}
		inst.Line = p.line
		img.ROM = append(img.ROM, inst)
	}

	return img, nil
}

func (img *Image) parseA(operand string, next *int) (Inst, error) {
	if n, err := strconv.Atoi(operand); err == nil {
		if n < 0 || n > maxAddress {
			return Inst{}, errors.Wrapf(ErrSyntax, "constant %d out of range", n)
		}
		return Inst{IsA: true, Value: n}, nil
	}

	if !isSymbol(operand) {
		return Inst{}, errors.Wrapf(ErrSyntax, "bad symbol %q", operand)
	}

	if addr, ok := predefined[operand]; ok {
		return Inst{IsA: true, Value: addr}, nil
	}
	if addr, ok := img.Labels[operand]; ok {
		return Inst{IsA: true, Value: addr}, nil
	}
	if addr, ok := img.Variables[operand]; ok {
		return Inst{IsA: true, Value: addr}, nil
	}

	addr := *next
	*next++
	img.Variables[operand] = addr

	return Inst{IsA: true, Value: addr}, nil
}

func parseC(text string) (Inst, error) {
	inst := Inst{}

	rest := text
	if i := strings.Index(rest, "="); i >= 0 {
		dest, err := parseDest(rest[:i])
		if err != nil {
			return Inst{}, err
		}
		inst.Dest = dest
		rest = rest[i+1:]
	}

	if i := strings.Index(rest, ";"); i >= 0 {
		inst.Jump = rest[i+1:]
		rest = rest[:i]
	}
	if !jumps[inst.Jump] {
		return Inst{}, errors.Wrapf(ErrSyntax, "bad jump %q", inst.Jump)
	}

	comp, ok := compTable[rest]
	if !ok {
		return Inst{}, errors.Wrapf(ErrSyntax, "bad computation %q", rest)
	}
	inst.Comp = rest
	inst.comp = comp
	inst.readM = strings.Contains(rest, "M")

	return inst, nil
}

func parseDest(s string) (uint8, error) {
	if s == "" {
		return 0, errors.Wrap(ErrSyntax, "empty destination")
	}

	var dest uint8
	for _, r := range s {
		var bit uint8
		switch r {
		case 'A':
			bit = DestA
		case 'D':
			bit = DestD
		case 'M':
			bit = DestM
		default:
			return 0, errors.Wrapf(ErrSyntax, "bad destination %q", s)
		}
		if dest&bit != 0 {
			return 0, errors.Wrapf(ErrSyntax, "bad destination %q", s)
		}
		dest |= bit
	}

	return dest, nil
}
