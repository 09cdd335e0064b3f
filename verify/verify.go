// Package verify provides tools for checking generated Hack assembly.
//
// The translator itself never assembles or runs its output. This package
// exists so that the generated code can be checked end to end, in tests and
// through the `hackvm run` command. It implements three stages:
//
// 1. Assembler (asm.go): resolves labels and variables into an Image
//   - Two passes: labels first, then A-instruction symbols
//   - Predefined symbols: SP, LCL, ARG, THIS, THAT, R0-R15, SCREEN, KBD
//   - Variables are allocated from address 16 in order of first use
//
// 2. Static Lint (lint.go): structural checks on the assembly text
//   - DUPLICATE: a label defined more than once
//   - UNDEFINED: a jump whose target symbol is never defined as a label
//
// 3. Functional Simulator (funcsim.go): a Hack CPU interpreter
//   - 32K words of RAM, registers A, D and PC
//   - Halts when PC leaves the ROM
//   - The Runner (runner.go) drives a Machine from an akita engine, one
//     instruction per tick
//
// # Usage Example
//
//	w := codegen.NewBuilder().Build()
//	lines := w.Comparators()
//	// ... append translated instructions ...
//
//	if issues := verify.RunLint(lines); len(issues) > 0 {
//	    for _, issue := range issues {
//	        log.Printf("[%s] line %d: %s", issue.Type, issue.Line, issue.Message)
//	    }
//	}
//
//	img, err := verify.Assemble(lines)
//	if err != nil {
//	    panic(err)
//	}
//
//	m := verify.NewMachine(img)
//	m.Poke(verify.SP, 256)
//	if err := m.Run(10000); err != nil {
//	    panic(err)
//	}
//	fmt.Println(verify.StateTable(m, 256))
//
// # Limitations
//
// - No screen or keyboard device behavior; those addresses are plain RAM
// - Programs that never fall off the end must be stopped with RunUntil or
//   a step limit
package verify

import "fmt"

// IssueType classifies a lint finding.
type IssueType string

// Lint issue types.
const (
	IssueDuplicate IssueType = "DUPLICATE"
	IssueUndefined IssueType = "UNDEFINED"
)

// Issue is one lint finding. Line is 1-based in the linted text.
type Issue struct {
	Type    IssueType
	Line    int
	Symbol  string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] line %d: %s", i.Type, i.Line, i.Message)
}
