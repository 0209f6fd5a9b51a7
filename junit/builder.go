package junit

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// DefaultMarkerType is used when a <failure> or <error> carries no type.
const DefaultMarkerType = "Exception"

// xmlNode is a generic element: decoding into it keeps every child in
// document order regardless of its tag.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []xmlNode  `xml:",any"`
}

type attrs map[string]string

func attrMap(list []xml.Attr) attrs {
	a := make(attrs, len(list))
	for _, attr := range list {
		a[attr.Name.Local] = attr.Value
	}
	return a
}

// attrOr parses the named attribute, returning def when it is absent or does
// not parse.
func attrOr[T any](a attrs, name string, parse func(string) (T, error), def T) T {
	raw, ok := a[name]
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.Errorf("negative count %d", n)
	}
	return n, nil
}

func parseSeconds(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errors.Errorf("negative time %g", f)
	}
	return f, nil
}

func (a attrs) str(name string) string {
	return attrOr(a, name, parseString, "")
}

func (a attrs) count(name string) int {
	return attrOr(a, name, parseCount, 0)
}

func (a attrs) seconds(name string) float64 {
	return attrOr(a, name, parseSeconds, 0)
}

// parseReport decodes a whole document and returns its root suite. A
// <testsuites> wrapper is skipped in favour of its first <testsuite>.
func parseReport(data []byte) (*TestSuite, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	switch root.XMLName.Local {
	case "testsuite":
		return buildSuite(&root), nil
	case "testsuites":
		for i := range root.Nodes {
			if root.Nodes[i].XMLName.Local == "testsuite" {
				return buildSuite(&root.Nodes[i]), nil
			}
		}
		return newTestSuite(), nil
	default:
		return nil, errors.Errorf("unexpected root element <%s>", root.XMLName.Local)
	}
}

// expectEOF consumes the rest of the document, which may only hold
// whitespace, comments and processing instructions.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after root element")
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
		default:
			return errors.New("unexpected content after root element")
		}
	}
}

func buildSuite(n *xmlNode) *TestSuite {
	a := attrMap(n.Attrs)
	s := newTestSuite()
	s.Name = a.str("name")
	s.File = a.str("file")
	s.Tests = a.count("tests")
	s.Assertions = a.count("assertions")
	s.Failures = a.count("failures")
	s.Errors = a.count("errors")
	s.Time = a.seconds("time")

	for i := range n.Nodes {
		switch n.Nodes[i].XMLName.Local {
		case "testsuite":
			s.addSuite(buildSuite(&n.Nodes[i]))
		case "testcase":
			s.addCase(buildCase(&n.Nodes[i]))
		}
	}
	return s
}

func buildCase(n *xmlNode) TestCase {
	a := attrMap(n.Attrs)
	c := TestCase{
		Name:       a.str("name"),
		Class:      a.str("class"),
		File:       a.str("file"),
		Line:       a.count("line"),
		Assertions: a.count("assertions"),
		Time:       a.seconds("time"),
	}
	if c.Class == "" {
		c.Class = a.str("classname")
	}

	marker, outcome := classify(n.Nodes, c.Assertions)
	c.Outcome = outcome
	if marker == nil {
		return c
	}
	c.Text = marker.Text
	if outcome == Failure || outcome == Error {
		c.Type = attrMap(marker.Attrs).str("type")
		if c.Type == "" {
			c.Type = DefaultMarkerType
		}
	}
	return c
}

// classify picks the marker that decides the outcome of a case from its child
// elements. Precedence: error, failure, warning, risky, skipped. An error or
// warning that IsRisky recognises counts as risky instead.
func classify(nodes []xmlNode, assertions int) (*xmlNode, Outcome) {
	var errNode, failure, warning, risky, skipped *xmlNode
	for i := range nodes {
		n := &nodes[i]
		tag := n.XMLName.Local
		switch tag {
		case "error", "warning", "risky":
			if IsRisky(tag, attrMap(n.Attrs).str("type"), n.Text, assertions) {
				if risky == nil {
					risky = n
				}
				continue
			}
			if tag == "error" && errNode == nil {
				errNode = n
			}
			if tag == "warning" && warning == nil {
				warning = n
			}
		case "failure":
			if failure == nil {
				failure = n
			}
		case "skipped":
			if skipped == nil {
				skipped = n
			}
		}
	}

	switch {
	case errNode != nil:
		return errNode, Error
	case failure != nil:
		return failure, Failure
	case warning != nil:
		return warning, Warning
	case risky != nil:
		return risky, Risky
	case skipped != nil:
		return skipped, Skipped
	default:
		return nil, Passed
	}
}
