// Package processor turns recognized text into what the result window shows:
// the text itself, or the numbers found in it and their sum.
package processor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"screen-capture-ocr/src/ocr"
)

var (
	// ErrNoNumbers means the text held no numeric token. It is an expected,
	// informational outcome.
	ErrNoNumbers = errors.New("no numbers were found in the selected area")
	// ErrCalculation means a numeric token could not be converted; no partial
	// sum is produced.
	ErrCalculation = errors.New("failed to process numbers")
)

// numberPattern matches an optional minus, digits, an optional point and at
// least one trailing digit: 12, -3.5, .75.
var numberPattern = regexp.MustCompile(`-?\d*\.?\d+`)

var printer = message.NewPrinter(language.English)

// Result is the processed outcome of one run.
type Result struct {
	Mode    ocr.Mode
	Text    string
	Tokens  []string
	Numbers []float64
	Total   float64
}

// Process applies the processor for mode to text.
func Process(mode ocr.Mode, text string) (Result, error) {
	switch mode {
	case ocr.ModeExtractText:
		return Passthrough(text), nil
	case ocr.ModeCalculateSum:
		return Sum(text)
	default:
		return Result{}, fmt.Errorf("unsupported mode %v", mode)
	}
}

// Passthrough returns text unchanged.
func Passthrough(text string) Result {
	return Result{Mode: ocr.ModeExtractText, Text: text}
}

// Tokens returns every numeric token in text, in order of appearance.
func Tokens(text string) []string {
	return numberPattern.FindAllString(text, -1)
}

// Sum parses every numeric token in text and adds them up.
func Sum(text string) (Result, error) {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return Result{}, ErrNoNumbers
	}

	numbers := make([]float64, 0, len(tokens))
	var total float64
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Result{}, fmt.Errorf("%w: token %q: %v", ErrCalculation, truncate(tok, 24), err)
		}
		numbers = append(numbers, v)
		total += v
	}

	return Result{
		Mode:    ocr.ModeCalculateSum,
		Text:    text,
		Tokens:  tokens,
		Numbers: numbers,
		Total:   total,
	}, nil
}

// FormatNumber renders v with thousands separators and two decimals.
func FormatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormattedNumbers returns each parsed number formatted for display.
func (r Result) FormattedNumbers() []string {
	out := make([]string, len(r.Numbers))
	for i, v := range r.Numbers {
		out[i] = FormatNumber(v)
	}
	return out
}

// FormattedTotal returns the sum formatted for display.
func (r Result) FormattedTotal() string {
	return FormatNumber(r.Total)
}

// PlainTotal is the sum without grouping or rounding, for pasting elsewhere.
func (r Result) PlainTotal() string {
	return strconv.FormatFloat(r.Total, 'f', -1, 64)
}

// NumbersText is the "Numbers found" listing used by the result window and
// its copy action.
func (r Result) NumbersText() string {
	return strings.Join(r.FormattedNumbers(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
