package answer

import "strings"

// codingSignals are substrings whose presence routes a question to the
// code-focused strategy.
var codingSignals = []string{
	"code", "function", "compile", "debug", "error message", "stack trace",
	"golang", " go ", "python", "javascript", "typescript", "rust", "java ",
	"sql", "regex", "api", "bug", "refactor", "unit test", "goroutine",
	"snippet", "implement", "syntax", "library", "package",
}

// Route classifies the question into a strategy name. It is a pure function
// of the question text; replacing it (say, with a model-based classifier)
// does not touch strategy execution.
func Route(question string) string {
	q := " " + strings.ToLower(question) + " "
	for _, signal := range codingSignals {
		if strings.Contains(q, signal) {
			return StrategyCoding
		}
	}
	return StrategyGeneral
}
