package vm

// Segment names a logical memory region addressed by push and pop.
type Segment string

const (
	Constant Segment = "constant"
	Static   Segment = "static"
	Local    Segment = "local"
	Argument Segment = "argument"
	This     Segment = "this"
	That     Segment = "that"
	Temp     Segment = "temp"
	Pointer  Segment = "pointer"
)

// Segments lists every segment in a fixed order.
func Segments() []Segment {
	return []Segment{Constant, Static, Local, Argument, This, That, Temp, Pointer}
}

// ParseSegment converts a token to a segment.
func ParseSegment(s string) (Segment, bool) {
	for _, seg := range Segments() {
		if string(seg) == s {
			return seg, true
		}
	}

	return "", false
}

// IsIndirect reports whether the segment is reached through a base
// pointer register.
func (s Segment) IsIndirect() bool {
	switch s {
	case Local, Argument, This, That:
		return true
	default:
		return false
	}
}
