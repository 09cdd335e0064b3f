package verify

import (
	"fmt"
	"strconv"
	"strings"
)

// RunLint performs static checks on Hack assembly text. It reports labels
// defined more than once and jumps whose target, loaded by the
// A-instruction right before the jump, is never defined as a label. Such a
// target would silently become a variable when assembled.
// Returns a list of issues found, or an empty list if there are none.
func RunLint(lines []string) []Issue {
	var issues []Issue

	defined := make(map[string]int)
	type use struct {
		sym  string
		line int
	}
	var targets []use

	lastSym := ""
	lastLine := 0
	for i, raw := range lines {
		text := cleanLine(raw)
		if text == "" {
			continue
		}

		if name, ok := labelName(text); ok {
			if first, dup := defined[name]; dup {
				issues = append(issues, Issue{
					Type:    IssueDuplicate,
					Line:    i + 1,
					Symbol:  name,
					Message: fmt.Sprintf("label %s already defined at line %d", name, first),
				})
				continue
			}
			defined[name] = i + 1
			continue
		}

		if strings.HasPrefix(text, "@") {
			lastSym, lastLine = text[1:], i+1
			continue
		}

		if strings.Contains(text, ";J") && lastLine == prevCodeLine(lines, i) {
			if _, err := strconv.Atoi(lastSym); err != nil && !IsPredefined(lastSym) {
				targets = append(targets, use{sym: lastSym, line: lastLine})
			}
		}
		lastSym, lastLine = "", 0
	}

	for _, t := range targets {
		if _, ok := defined[t.sym]; !ok {
			issues = append(issues, Issue{
				Type:    IssueUndefined,
				Line:    t.line,
				Symbol:  t.sym,
				Message: fmt.Sprintf("jump target %s is not a label", t.sym),
			})
		}
	}

	return issues
}

// prevCodeLine returns the 1-based line of the nearest non-empty line
// before index i, or 0.
func prevCodeLine(lines []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		text := cleanLine(lines[j])
		if text == "" {
			continue
		}
		if _, ok := labelName(text); ok {
			return 0
		}
		return j + 1
	}
	return 0
}
