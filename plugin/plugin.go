package plugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/drone/drone-junit/junit"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Args represents the plugin's configurable arguments.
type Args struct {
	ReportFilenamePattern string `envconfig:"PLUGIN_REPORT_FILENAME_PATTERN"`
	FailedFails           int    `envconfig:"PLUGIN_FAILED_FAILS"`
	FailedSkips           int    `envconfig:"PLUGIN_FAILED_SKIPS"`
	ThresholdMode         string `envconfig:"PLUGIN_THRESHOLD_MODE" default:"absolute"`
	UnstableFails         int    `envconfig:"PLUGIN_UNSTABLE_FAILS"`
	UnstableSkips         int    `envconfig:"PLUGIN_UNSTABLE_SKIPS"`
	JobStatus             string `envconfig:"PLUGIN_JOB_STATUS"`
	FailIfNoResults       bool   `envconfig:"PLUGIN_FAIL_IF_NO_RESULTS"`
	FailOnRisky           bool   `envconfig:"PLUGIN_FAIL_ON_RISKY"`
	RemoveReports         bool   `envconfig:"PLUGIN_REMOVE_REPORTS"`
	Level                 string `envconfig:"PLUGIN_LOG_LEVEL"`
}

// ValidateInputs ensures the user inputs meet the plugin requirements.
func ValidateInputs(args Args) error {
	if args.ReportFilenamePattern == "" {
		return errors.New("missing required parameter: ReportFilenamePattern. Please specify the pattern to locate the JUnit report files")
	}
	if args.FailedFails < 0 || args.FailedSkips < 0 || args.UnstableFails < 0 || args.UnstableSkips < 0 {
		return errors.New("threshold values must be non-negative. Check the configured values for failed and skipped tests")
	}
	if args.ThresholdMode != ThresholdModeAbsolute && args.ThresholdMode != ThresholdModePercentage {
		return fmt.Errorf("invalid ThresholdMode value %q. It must be %q or %q", args.ThresholdMode, ThresholdModeAbsolute, ThresholdModePercentage)
	}
	return nil
}

// Exec reads every JUnit report matching the pattern, logs its details and
// checks the aggregated totals against the thresholds.
func Exec(ctx context.Context, args Args) error {
	files, err := locateFiles(args.ReportFilenamePattern)
	if err != nil {
		if args.FailIfNoResults {
			return errors.New("failed to locate files: " + err.Error())
		}
		logrus.WithError(err).Warn("No JUnit report files found, continuing execution as FailIfNoResults is false")
		return nil
	}

	var aggregatedResults Results
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		results, err := processFile(file, args.RemoveReports)
		if err != nil {
			logrus.WithField("File", file).WithError(err).Error("Error processing file")
			return errors.New("failed to process file: " + err.Error())
		}
		aggregatedResults.Add(results)
	}

	logSuiteSummary("All reports", aggregatedResults)

	if err := validateThresholds(aggregatedResults, args); err != nil {
		logger := logrus.WithFields(logrus.Fields{
			"Total Tests": aggregatedResults.Total,
			"Failures":    aggregatedResults.Failures,
			"Errors":      aggregatedResults.Errors,
			"Skipped":     aggregatedResults.Skipped,
			"Risky":       aggregatedResults.Risky,
		})
		logger.Error(err.Error())
		return err
	}
	return nil
}

// locateFiles identifies files matching the given pattern.
func locateFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logrus.WithError(err).WithField("Pattern", pattern).Error("Error occurred while searching for files")
		return nil, errors.New("failed to search for files: " + err.Error())
	}
	if len(matches) == 0 {
		return nil, errors.New("no files found matching the report filename pattern")
	}
	return matches, nil
}

// processFile reads one JUnit report, logs its details and optionally
// removes it once consumed.
func processFile(filename string, remove bool) (Results, error) {
	logrus.Infof("Processing file: %s", filename)

	reader, err := junit.Open(filename)
	if err != nil {
		return Results{}, err
	}

	results := Results{
		Total:      reader.TotalTests(),
		Assertions: reader.TotalAssertions(),
		Failures:   reader.TotalFailures(),
		Errors:     reader.TotalErrors(),
		Warnings:   reader.TotalWarnings(),
		Risky:      reader.TotalRisky(),
		Skipped:    reader.TotalSkipped(),
		Time:       reader.TotalTime(),
	}

	suiteName := reader.Suite().Name
	if suiteName == "" {
		suiteName = filename
	}
	logSuiteSummary(suiteName, results)
	logrus.Infof("\nFeedback: %s", colorizeFeedback(reader.Feedback()))
	logMessages(reader)

	if remove {
		if err := reader.RemoveLog(); err != nil {
			return Results{}, err
		}
		logrus.WithField("File", filename).Info("Removed report file")
	}
	return results, nil
}

func logSuiteSummary(suiteName string, results Results) {
	logrus.Infof("\n===============================================")
	logrus.Infof("\nSuite: %s", suiteName)
	logrus.Infof("\nTotal Tests: %d | Assertions: %d | Failures: %d | Errors: %d | Warnings: %d | Risky: %d | Skips: %d | Duration: %s",
		results.Total, results.Assertions, results.Failures, results.Errors, results.Warnings, results.Risky, results.Skipped, humanDuration(results.Time))
	logrus.Infof("\n===============================================")
}

func logMessages(reader *junit.Reader) {
	sections := []struct {
		title    string
		messages []string
	}{
		{"errors", reader.Errors()},
		{"warnings", reader.Warnings()},
		{"failures", reader.Failures()},
		{"risky tests", reader.Risky()},
		{"skipped tests", reader.Skipped()},
	}
	for _, section := range sections {
		if len(section.messages) == 0 {
			continue
		}
		logrus.Infof("\nThere were %d %s:", len(section.messages), section.title)
		for i, message := range section.messages {
			logrus.Infof("\n%d) %s", i+1, message)
		}
	}
}

func humanDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%.6fs (%s)", seconds, units.HumanDuration(d))
}

var feedbackColors = map[rune]*color.Color{
	'E': color.New(color.FgRed, color.Bold),
	'F': color.New(color.FgRed),
	'W': color.New(color.FgYellow),
	'R': color.New(color.FgYellow, color.Bold),
	'S': color.New(color.FgCyan),
}

func colorizeFeedback(feedback string) string {
	var b strings.Builder
	for _, ch := range feedback {
		if c, ok := feedbackColors[ch]; ok {
			b.WriteString(c.Sprint(string(ch)))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// validateThresholds validates test report thresholds based on aggregate results.
func validateThresholds(results Results, args Args) error {
	if args.FailOnRisky && results.Risky > 0 {
		return fmt.Errorf("\nbuild marked as failed: %d risky tests found and FailOnRisky is true", results.Risky)
	}

	switch args.ThresholdMode {
	case ThresholdModeAbsolute:
		if err := validateAbsoluteThresholds(results, args); err != nil {
			return errors.New("\nabsolute threshold validation failed: " + err.Error())
		}

		if strings.ToUpper(args.JobStatus) == "FAILED" {
			if err := validateUnstableAbsoluteThresholds(results, args); err != nil {
				return errors.New("\nfail absolute threshold validation failed: " + err.Error())
			}
		}
	case ThresholdModePercentage:
		if err := validatePercentageThresholds(results, args); err != nil {
			return errors.New("\npercentage threshold validation failed: " + err.Error())
		}

		if strings.ToUpper(args.JobStatus) == "FAILED" {
			if err := validateUnstablePercentageThresholds(results, args); err != nil {
				return errors.New("\nfail percentage threshold validation failed: " + err.Error())
			}
		}
	default:
		return fmt.Errorf("\ninvalid ThresholdMode: %q, expected %q or %q", args.ThresholdMode, ThresholdModeAbsolute, ThresholdModePercentage)
	}
	return nil
}

// validateAbsoluteThresholds checks absolute thresholds. Errors count as failed tests.
func validateAbsoluteThresholds(results Results, args Args) error {
	failed := results.Failures + results.Errors
	if args.FailedFails > 0 && failed > args.FailedFails {
		return fmt.Errorf("number of failed tests (%d) exceeded the threshold (%d)", failed, args.FailedFails)
	}
	if args.FailedSkips > 0 && results.Skipped > args.FailedSkips {
		return fmt.Errorf("number of skipped tests (%d) exceeded the threshold (%d)", results.Skipped, args.FailedSkips)
	}
	return nil
}

// validatePercentageThresholds checks percentage-based thresholds.
func validatePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil
	}

	failureRate := float64(results.Failures+results.Errors) / float64(results.Total) * 100
	skipRate := float64(results.Skipped) / float64(results.Total) * 100

	if args.FailedFails > 0 && failureRate > float64(args.FailedFails) {
		return fmt.Errorf("failure rate (%.2f%%) exceeded the threshold (%.2f%%)", failureRate, float64(args.FailedFails))
	}
	if args.FailedSkips > 0 && skipRate > float64(args.FailedSkips) {
		return fmt.Errorf("skip rate (%.2f%%) exceeded the threshold (%.2f%%)", skipRate, float64(args.FailedSkips))
	}
	return nil
}

// validateUnstableAbsoluteThresholds checks the absolute thresholds applied when
// the job has already failed.
func validateUnstableAbsoluteThresholds(results Results, args Args) error {
	failed := results.Failures + results.Errors
	if args.UnstableFails > 0 && failed > args.UnstableFails {
		return fmt.Errorf("build marked as fail: number of failed tests (%d) exceeded the unstable threshold (%d)", failed, args.UnstableFails)
	}
	if args.UnstableSkips > 0 && results.Skipped > args.UnstableSkips {
		return fmt.Errorf("build marked as fail: number of skipped tests (%d) exceeded the unstable threshold (%d)", results.Skipped, args.UnstableSkips)
	}
	return nil
}

// validateUnstablePercentageThresholds checks the percentage thresholds applied
// when the job has already failed.
func validateUnstablePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil
	}

	failureRate := float64(results.Failures+results.Errors) / float64(results.Total) * 100
	skipRate := float64(results.Skipped) / float64(results.Total) * 100

	if args.UnstableFails > 0 && failureRate > float64(args.UnstableFails) {
		return fmt.Errorf("build marked as fail: failure rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", failureRate, float64(args.UnstableFails))
	}
	if args.UnstableSkips > 0 && skipRate > float64(args.UnstableSkips) {
		return fmt.Errorf("build marked as fail: skip rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", skipRate, float64(args.UnstableSkips))
	}
	return nil
}
