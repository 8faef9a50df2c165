package codegen

// Output is an append-only sequence of assembly lines.
type Output struct {
	lines []string
}

// NewOutput creates an empty output.
func NewOutput() *Output {
	return &Output{}
}

func (o *Output) append(lines ...string) {
	o.lines = append(o.lines, lines...)
}

// Lines returns a copy of the lines emitted so far.
func (o *Output) Lines() []string {
	return append([]string(nil), o.lines...)
}

// Len returns the number of lines emitted so far.
func (o *Output) Len() int {
	return len(o.lines)
}
