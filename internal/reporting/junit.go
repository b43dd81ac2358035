package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one activated stage.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one outcome.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure is an unsatisfied check.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a check that could not produce a verdict.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit maps each stage of r to a test suite and each outcome to a
// test case. Internal faults are reported as errors, every other failure
// kind as a failure.
func ConvertToJUnit(r *Report) *JUnitTestSuites {
	suites := &JUnitTestSuites{
		Name: "minercheck",
		Time: float64(r.DurationMs) / 1000.0,
	}
	props := []JUnitProperty{
		{Name: "run_id", Value: r.RunID},
		{Name: "config_path", Value: r.Config.Path},
		{Name: "config_status", Value: string(r.Config.Status)},
	}

	for _, st := range r.Stages {
		suite := JUnitTestSuite{
			Name:       st.Name,
			Time:       st.Duration.Seconds(),
			Timestamp:  r.StartedAt.Format(time.RFC3339),
			Properties: props,
		}
		for _, o := range st.Outcomes {
			tc := convertOutcome(st.Name, o)
			switch {
			case tc.Error != nil:
				suite.Errors++
			case tc.Failure != nil:
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
		suites.TestSuites = append(suites.TestSuites, suite)
	}
	return suites
}

func convertOutcome(stage string, o checks.Outcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      o.Name,
		Classname: stage,
		Time:      o.Duration.Seconds(),
	}
	if o.Passed {
		return tc
	}

	if o.Kind == checks.KindInternalFault {
		tc.Error = &JUnitError{Message: o.Message, Type: string(o.Kind), Body: o.Detail}
	} else {
		tc.Failure = &JUnitFailure{Message: o.Message, Type: string(o.Kind), Body: o.Detail}
	}
	return tc
}

// WriteJUnit writes r as JUnit XML.
func WriteJUnit(w io.Writer, r *Report) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
