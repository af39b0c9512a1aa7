// Package testutil provides shared test helpers for turing.
//
// # Fixtures
//
//   - WorkedExamples() - operand pairs with their expected sum, step count and tapes
//   - SampleConfig - a config.yaml exercising every section
//
// # Environment Helpers
//
//   - SetupTestDir(t) - temp directory with a .turing/ directory
//   - WriteConfig(t, dir, yaml) - writes .turing/config.yaml
//   - WriteTestFile(t, base, path, content) - writes a file in the test dir
//   - MustMarshalJSON(t, v), MustUnmarshalJSON(t, data, v) - JSON or fail the test
//
// # Assertions
//
//   - AssertTrace(t, resp) - structural checks every successful trace passes
//   - AssertWorkedExample(t, ex, resp) - a trace matches a worked example
//
// # Timeouts
//
//   - ContextWithTestDeadline(t, fallback) - context bounded by the test deadline
//   - ShortOperationContext(t) - the same with a short fallback
//
// Packages below unary (machine, unary) cannot import this package from
// their own tests without an import cycle.
package testutil
