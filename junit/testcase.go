package junit

import (
	"fmt"
	"strings"
)

// Outcome is the classification of a single test case.
type Outcome int

const (
	Passed Outcome = iota
	Failure
	Error
	Warning
	Risky
	Skipped
)

var outcomeNames = map[Outcome]string{
	Passed:  "passed",
	Failure: "failure",
	Error:   "error",
	Warning: "warning",
	Risky:   "risky",
	Skipped: "skipped",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Feedback returns the progress character for the outcome.
func (o Outcome) Feedback() byte {
	switch o {
	case Error:
		return 'E'
	case Warning:
		return 'W'
	case Failure:
		return 'F'
	case Risky:
		return 'R'
	case Skipped:
		return 'S'
	default:
		return '.'
	}
}

// TestCase is one <testcase> element together with its outcome.
type TestCase struct {
	Name       string
	Class      string
	File       string
	Line       int
	Assertions int
	Time       float64

	Outcome Outcome
	// Type is the exception or assertion class; only set for Failure and Error.
	Type    string
	// Text is the marker element body, verbatim. Empty for Passed.
	Text    string
}

// Message renders the case as "{class}::{name}", followed by the marker text
// and the "{file}:{line}" location when they are known.
func (c TestCase) Message() string {
	var b strings.Builder
	b.WriteString(c.Class)
	b.WriteString("::")
	b.WriteString(c.Name)
	if c.Text != "" {
		b.WriteString("\n")
		b.WriteString(c.Text)
	}
	if c.File != "" && c.Line > 0 {
		fmt.Fprintf(&b, "\n\n%s:%d", c.File, c.Line)
	}
	return b.String()
}

const (
	riskyTestErrorType = `PHPUnit\Framework\RiskyTestError`
	riskyTestType      = `PHPUnit\Framework\RiskyTest`
	noAssertionsText   = "This test did not perform any assertions"
)

// IsRisky reports whether a marker element describes a risky test: a test
// that finished without performing any assertions. tag is the marker's
// element name, typ its type attribute, text its body and assertions the
// case's assertion count. The message rule only applies to cases that made
// no assertions and whose message starts with the no-assertions notice.
func IsRisky(tag, typ, text string, assertions int) bool {
	switch tag {
	case "risky":
		return true
	case "error", "warning":
		if typ == riskyTestErrorType || typ == riskyTestType {
			return true
		}
		return assertions == 0 && strings.HasPrefix(strings.TrimSpace(text), noAssertionsText)
	default:
		return false
	}
}
