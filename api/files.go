package api

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/vm"
)

// SourceExt is the extension of VM source files.
const SourceExt = ".vm"

// FileSource reads units from .vm files. Each path is either a file or a
// directory whose .vm files are read in name order.
type FileSource struct {
	Paths []string
}

// Units scans every source file.
func (s FileSource) Units() ([]vm.Unit, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	units := make([]vm.Unit, 0, len(files))
	for _, f := range files {
		u, err := vm.ParseFile(f)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	return units, nil
}

// Files expands the paths into the list of source files.
func (s FileSource) Files() ([]string, error) {
	var files []string

	for _, p := range s.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "FileSource")
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(p, "*"+SourceExt))
		if err != nil {
			return nil, errors.Wrap(err, "FileSource")
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoUnits, "%s", strings.Join(s.Paths, ", "))
	}

	return files, nil
}

// FileSink writes the program to a file.
type FileSink struct {
	Path string
}

// WriteLines writes one line per element, creating or truncating the file.
func (s FileSink) WriteLines(lines []string) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return errors.Wrap(err, "FileSink")
	}

	if err := (WriterSink{W: f}).WriteLines(lines); err != nil {
		f.Close()
		return err
	}

	return errors.Wrap(f.Close(), "FileSink")
}

// WriterSink writes the program to an io.Writer.
type WriterSink struct {
	W io.Writer
}

// WriteLines writes one line per element.
func (s WriterSink) WriteLines(lines []string) error {
	bw := bufio.NewWriter(s.W)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return errors.Wrap(err, "WriterSink")
		}
	}
	return errors.Wrap(bw.Flush(), "WriterSink")
}

// DefaultOutputPath names the output of translating paths: Foo.vm becomes
// Foo.asm, and a directory Dir becomes Dir/Dir.asm.
func DefaultOutputPath(paths []string) string {
	if len(paths) != 1 {
		return "out.asm"
	}

	p := filepath.Clean(paths[0])
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		return filepath.Join(p, filepath.Base(abs)+".asm")
	}

	return strings.TrimSuffix(p, filepath.Ext(p)) + ".asm"
}
