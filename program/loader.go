// Package program reads VM programs from .vm files and writes the
// translated assembly.
package program

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sarchlab/vmtrans/vm"
)

// Ext is the extension of VM source files.
const Ext = ".vm"

// ErrNoSource is returned when a directory holds no .vm file.
var ErrNoSource = errors.New("no .vm files found")

// StripComment removes a trailing // comment and the whitespace around
// the instruction.
func StripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}

// ParseLines reads the instructions of one file. Blank and comment-only
// lines are skipped. Errors carry the file name and the line number.
func ParseLines(name string, r io.Reader) ([]vm.Instruction, error) {
	var prog []vm.Instruction

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		text := StripComment(scanner.Text())
		if text == "" {
			continue
		}

		inst, err := vm.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, n, err)
		}

		prog = append(prog, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return prog, nil
}

// LoadFile reads a single .vm file.
func LoadFile(path string) ([]vm.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseLines(filepath.Base(path), f)
}

// LoadDir reads every .vm file of dir, in file name order, into one
// program.
func LoadDir(dir string) ([]vm.Instruction, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == Ext {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSource, dir)
	}

	sort.Strings(names)

	var prog []vm.Instruction
	for _, name := range names {
		insts, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		prog = append(prog, insts...)
	}

	return prog, nil
}

// PathSource loads a program from a .vm file or a directory of them.
type PathSource struct {
	path  string
	isDir bool
}

// Open creates a source for path.
func Open(path string) (*PathSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &PathSource{path: path, isDir: info.IsDir()}, nil
}

// Name returns the program name: the directory name, or the file name
// without its extension.
func (s *PathSource) Name() string {
	base := filepath.Base(filepath.Clean(s.path))
	if s.isDir {
		return base
	}

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads the program.
func (s *PathSource) Load() ([]vm.Instruction, error) {
	if s.isDir {
		return LoadDir(s.path)
	}

	return LoadFile(s.path)
}

// OutputPath returns where the assembly of the source goes by default:
// <dir>/<dir>.asm for a directory and <name>.asm next to a file.
func (s *PathSource) OutputPath() string {
	if s.isDir {
		return filepath.Join(s.path, s.Name()+".asm")
	}

	return filepath.Join(filepath.Dir(s.path), s.Name()+".asm")
}
