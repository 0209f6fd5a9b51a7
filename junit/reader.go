// Package junit reads JUnit XML logs written by PHPUnit-style test runners
// into a suite/case tree and answers summary queries over it.
package junit

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Reader holds the parsed contents of one JUnit log file. It is not safe for
// concurrent use; open one Reader per file.
type Reader struct {
	path  string
	suite *TestSuite
}

// Open loads and parses the log at path.
func Open(path string) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrFileNotFound, "%s is not a regular file", path)
	}
	if info.Size() == 0 {
		return nil, errors.Wrap(ErrEmptyLog, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%s: %v", path, err)
	}
	if len(data) == 0 {
		return nil, errors.Wrap(ErrEmptyLog, path)
	}

	suite, err := parseReport(data)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedLog, "%s: %v", path, err)
	}

	logrus.WithField("File", path).WithField("Suite", suite.Name).Debug("Loaded JUnit log")
	return &Reader{path: path, suite: suite}, nil
}

// Path returns the file the Reader was opened from.
func (r *Reader) Path() string {
	return r.path
}

// Suite returns the root suite. Callers must not modify it.
func (r *Reader) Suite() *TestSuite {
	return r.suite
}

// TotalTests returns the root suite's tests attribute.
func (r *Reader) TotalTests() int {
	return r.suite.Tests
}

// TotalAssertions returns the root suite's assertions attribute.
func (r *Reader) TotalAssertions() int {
	return r.suite.Assertions
}

// TotalErrors returns the root suite's errors attribute.
func (r *Reader) TotalErrors() int {
	return r.suite.Errors
}

// TotalFailures returns the root suite's failures attribute.
func (r *Reader) TotalFailures() int {
	return r.suite.Failures
}

// TotalTime returns the root suite's time attribute in seconds.
func (r *Reader) TotalTime() float64 {
	return r.suite.Time
}

// TotalWarnings counts the cases classified as Warning. Risky cases are not
// included.
func (r *Reader) TotalWarnings() int {
	return r.count(Warning)
}

// TotalSkipped counts the cases classified as Skipped.
func (r *Reader) TotalSkipped() int {
	return r.count(Skipped)
}

// TotalRisky counts the cases classified as Risky.
func (r *Reader) TotalRisky() int {
	return r.count(Risky)
}

func (r *Reader) count(o Outcome) int {
	n := 0
	r.suite.Walk(func(c TestCase) {
		if c.Outcome == o {
			n++
		}
	})
	return n
}

// Cases returns every case in the log in document order.
func (r *Reader) Cases() []TestCase {
	var cases []TestCase
	r.suite.Walk(func(c TestCase) {
		cases = append(cases, c)
	})
	return cases
}

// Failures returns the formatted message of every Failure case, in document
// order. See TestCase.Message for the format.
func (r *Reader) Failures() []string {
	return r.messages(Failure)
}

// Errors returns the formatted message of every Error case.
func (r *Reader) Errors() []string {
	return r.messages(Error)
}

// Warnings returns the formatted message of every Warning case.
func (r *Reader) Warnings() []string {
	return r.messages(Warning)
}

// Skipped returns the formatted message of every Skipped case.
func (r *Reader) Skipped() []string {
	return r.messages(Skipped)
}

// Risky returns the formatted message of every Risky case.
func (r *Reader) Risky() []string {
	return r.messages(Risky)
}

func (r *Reader) messages(o Outcome) []string {
	var messages []string
	r.suite.Walk(func(c TestCase) {
		if c.Outcome == o {
			messages = append(messages, c.Message())
		}
	})
	return messages
}

// Feedback returns one progress character per case, in document order:
// E error, W warning, F failure, R risky, S skipped and '.' for passed.
func (r *Reader) Feedback() string {
	var b strings.Builder
	r.suite.Walk(func(c TestCase) {
		b.WriteByte(c.Outcome.Feedback())
	})
	return b.String()
}

// RemoveLog deletes the backing file. The parsed tree stays usable.
func (r *Reader) RemoveLog() error {
	if err := os.Remove(r.path); err != nil {
		return errors.Wrapf(ErrFilesystem, "%s: %v", r.path, err)
	}
	logrus.WithField("File", r.path).Debug("Removed JUnit log")
	return nil
}
