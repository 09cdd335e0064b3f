package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Errors reported by the scanner. A *SyntaxError wraps one of them.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownSegment = errors.New("unknown segment")
	ErrArity          = errors.New("wrong number of arguments")
	ErrBadNumber      = errors.New("invalid number")
)

// SyntaxError locates a scanning failure in a unit.
type SyntaxError struct {
	Unit string
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Unit, e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ParseOp maps an arithmetic keyword to its Op.
func ParseOp(s string) (Op, bool) {
	for i, name := range opNames {
		if name == s {
			return Op(i), true
		}
	}
	return 0, false
}

// ParseSegment maps a segment keyword to its Segment.
func ParseSegment(s string) (Segment, error) {
	for i, name := range segmentNames {
		if name == s {
			return Segment(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownSegment, "%q", s)
}

// ParseFile scans the .vm file at path. The unit is named after the file's
// base name without extension.
func ParseFile(path string) (Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unit{}, errors.Wrap(err, "ParseFile")
	}
	defer f.Close()

	return Parse(UnitName(path), f)
}

// UnitName derives a unit name from a source path.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parse scans VM source text into a unit. Comments start with "//" and run
// to the end of the line. Keywords are case-sensitive and identifiers are
// kept verbatim.
func Parse(name string, r io.Reader) (Unit, error) {
	u := Unit{Name: name}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		text := stripComment(scanner.Text())
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		inst, err := parseFields(fields)
		if err != nil {
			return Unit{}, &SyntaxError{Unit: name, Line: line, Text: text, Err: err}
		}

		u.Instructions = append(u.Instructions, inst)
		u.Lines = append(u.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return Unit{}, errors.Wrapf(err, "scan %s", name)
	}

	return u, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseFields(f []string) (Instruction, error) {
	cmd := f[0]

	if op, ok := ParseOp(cmd); ok {
		if err := arity(f, 0); err != nil {
			return nil, err
		}
		return Arithmetic{Op: op}, nil
	}

	switch cmd {
	case "push", "pop":
		if err := arity(f, 2); err != nil {
			return nil, err
		}
		seg, err := ParseSegment(f[1])
		if err != nil {
			return nil, err
		}
		idx, err := parseCount(f[2])
		if err != nil {
			return nil, err
		}
		if cmd == "push" {
			return Push{Segment: seg, Index: idx}, nil
		}
		return Pop{Segment: seg, Index: idx}, nil
	case "label", "goto", "if-goto":
		if err := arity(f, 1); err != nil {
			return nil, err
		}
		switch cmd {
		case "label":
			return Label{Name: f[1]}, nil
		case "goto":
			return Goto{Name: f[1]}, nil
		default:
			return IfGoto{Name: f[1]}, nil
		}
	case "function", "call":
		if err := arity(f, 2); err != nil {
			return nil, err
		}
		n, err := parseCount(f[2])
		if err != nil {
			return nil, err
		}
		if cmd == "function" {
			return Function{Name: f[1], NumVars: n}, nil
		}
		return Call{Name: f[1], NumArgs: n}, nil
	case "return":
		if err := arity(f, 0); err != nil {
			return nil, err
		}
		return Return{}, nil
	}

	return nil, errors.Wrapf(ErrUnknownCommand, "%q", cmd)
}

func arity(f []string, want int) error {
	if len(f)-1 != want {
		return errors.Wrapf(ErrArity, "%s takes %d, got %d", f[0], want, len(f)-1)
	}
	return nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrBadNumber, "%q", s)
	}
	return n, nil
}
