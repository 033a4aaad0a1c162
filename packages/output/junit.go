package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite is one test; its steps are the cases.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a step that never ran
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter formats test results as JUnit XML
type JUnitFormatter struct {
	writer io.Writer
	name   string
	now    func() time.Time
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
		name:   "apictl",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// JUnitWithName sets the name attribute of the testsuites element.
func JUnitWithName(name string) JUnitOption {
	return func(f *JUnitFormatter) {
		f.name = name
	}
}

// Build converts the tree without writing it.
func (f *JUnitFormatter) Build(root *results.Node, total time.Duration) JUnitTestSuites {
	timestamp := f.now().Format(time.RFC3339)
	suites := JUnitTestSuites{
		Name:       f.name,
		Time:       total.Seconds(),
		Timestamp:  timestamp,
		TestSuites: make([]JUnitTestSuite, 0, len(root.Children)),
	}

	for _, test := range root.Children {
		suite := JUnitTestSuite{
			Name:      test.Name,
			Time:      test.Duration.Seconds(),
			Timestamp: timestamp,
			TestCases: make([]JUnitTestCase, 0, len(test.Children)),
		}

		for _, step := range test.Children {
			tc := JUnitTestCase{
				Name:      step.Name,
				ClassName: test.Name,
				Time:      step.Duration.Seconds(),
			}

			switch step.State.Kind {
			case results.KindFailed:
				suite.Failures++
				tc.Failure = &JUnitFailure{
					Message: "Assertion failed",
					Type:    "AssertionError",
					Content: strings.Join(stepFailures(step), "\n"),
				}
			case results.KindNotRun, results.KindRunning:
				suite.Skipped++
				tc.Skipped = &JUnitSkipped{Message: "not run"}
			}

			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Skipped += suite.Skipped
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	return suites
}

func stepFailures(step *results.Node) []string {
	if step.State.Reason != results.DependentFailure {
		return []string{step.State.Reason}
	}
	return failures(step)
}

func (f *JUnitFormatter) Format(root *results.Node, total time.Duration) error {
	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(f.Build(root, total)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.writer)
	return err
}
