package junit

// TestSuite is one <testsuite> element. Counters are taken verbatim from the
// element attributes and are not recomputed from children.
type TestSuite struct {
	Name       string
	File       string
	Tests      int
	Assertions int
	Failures   int
	Errors     int
	Time       float64

	// Cases holds the suite's own test cases in document order.
	Cases []TestCase

	suites   map[string]*TestSuite
	names    []string
	children []child
}

// child points either at a nested suite (by name) or at an entry of Cases.
type child struct {
	suite   string
	caseIdx int
}

func newTestSuite() *TestSuite {
	return &TestSuite{suites: map[string]*TestSuite{}}
}

// addSuite inserts s keyed by its name. A repeated name replaces the earlier
// suite but keeps its position.
func (s *TestSuite) addSuite(sub *TestSuite) {
	if _, ok := s.suites[sub.Name]; !ok {
		s.names = append(s.names, sub.Name)
		s.children = append(s.children, child{suite: sub.Name, caseIdx: -1})
	}
	s.suites[sub.Name] = sub
}

func (s *TestSuite) addCase(c TestCase) {
	s.children = append(s.children, child{caseIdx: len(s.Cases)})
	s.Cases = append(s.Cases, c)
}

// Suite returns the direct child suite with the given name.
func (s *TestSuite) Suite(name string) (*TestSuite, bool) {
	sub, ok := s.suites[name]
	return sub, ok
}

// SuiteNames returns the names of the direct child suites in document order.
func (s *TestSuite) SuiteNames() []string {
	return append([]string(nil), s.names...)
}

// Suites returns the direct child suites in document order.
func (s *TestSuite) Suites() []*TestSuite {
	suites := make([]*TestSuite, 0, len(s.names))
	for _, name := range s.names {
		suites = append(suites, s.suites[name])
	}
	return suites
}

// Walk calls fn for every test case in the tree, depth-first, in the order the
// cases and nested suites appear in the report.
func (s *TestSuite) Walk(fn func(TestCase)) {
	for _, c := range s.children {
		if c.caseIdx < 0 {
			s.suites[c.suite].Walk(fn)
			continue
		}
		fn(s.Cases[c.caseIdx])
	}
}
