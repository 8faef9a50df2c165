package verify

import (
	"fmt"
	"strings"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Label structure error (duplicate declaration)
	IssueFlow   IssueType = "FLOW"   // Control-flow error (jump to an undeclared label)
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or FLOW
	Line    int                    // 1-based line in the listing (-1 if not applicable)
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

// RunLint performs static checks on generated assembly. Every label must
// be declared once, and every jump must target a declared label, a
// predefined symbol or a number.
// Returns a list of issues found, or empty list if no issues.
func RunLint(lines []string) []Issue {
	var issues []Issue

	declared := make(map[string]int)
	for n, raw := range lines {
		text := stripComment(raw)
		if !strings.HasPrefix(text, "(") {
			continue
		}

		name, ok := parseLabel(text)
		if !ok {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Line:    n + 1,
				Message: fmt.Sprintf("Malformed label declaration %q", text),
			})
			continue
		}

		if first, dup := declared[name]; dup {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Line:    n + 1,
				Message: fmt.Sprintf("Label %s declared again (first at line %d)", name, first),
				Details: map[string]interface{}{"label": name, "first": first},
			})
			continue
		}
		declared[name] = n + 1
	}

	issues = append(issues, checkJumpTargets(lines, declared)...)

	return issues
}

// checkJumpTargets flags "@X" followed by a jump when X is neither a
// declared label nor a register. A jump through a register such as R15 is
// indirect and is allowed.
func checkJumpTargets(lines []string, declared map[string]int) []Issue {
	var issues []Issue

	target, targetLine := "", -1
	for n, raw := range lines {
		text := stripComment(raw)
		if text == "" || strings.HasPrefix(text, "(") {
			continue
		}

		if strings.HasPrefix(text, "@") {
			target, targetLine = text[1:], n+1
			continue
		}

		_, jump, hasJump := strings.Cut(text, ";")
		if hasJump && jump != "" && target != "" && !isKnownTarget(target, declared) {
			issues = append(issues, Issue{
				Type:    IssueFlow,
				Line:    targetLine,
				Message: fmt.Sprintf("Jump to undeclared label %s", target),
				Details: map[string]interface{}{"label": target, "jump": n + 1},
			})
		}
		target = ""
	}

	return issues
}

func isKnownTarget(sym string, declared map[string]int) bool {
	if _, ok := declared[sym]; ok {
		return true
	}
	if _, ok := predefined[sym]; ok {
		return true
	}
	return sym != "" && sym[0] >= '0' && sym[0] <= '9'
}
