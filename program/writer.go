package program

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write writes lines to w, each followed by a newline.
func Write(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile creates or truncates path and writes lines to it.
func WriteFile(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, lines); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// FileSink writes assembly to a file.
type FileSink struct {
	Path string
}

func (s FileSink) Write(lines []string) error {
	return WriteFile(s.Path, lines)
}

// StreamSink writes assembly to a stream such as stdout.
type StreamSink struct {
	W io.Writer
}

func (s StreamSink) Write(lines []string) error {
	return Write(s.W, lines)
}
