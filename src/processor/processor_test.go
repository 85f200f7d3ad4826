package processor

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"screen-capture-ocr/src/ocr"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		tokens  []string
		numbers []float64
		total   float64
	}{
		{"mixed prose", "12.50 and -3 plus .75", []string{"12.50", "-3", ".75"}, []float64{12.5, -3, 0.75}, 10.25},
		{"column", "100\n200\n300", []string{"100", "200", "300"}, []float64{100, 200, 300}, 600},
		{"single", "total 42", []string{"42"}, []float64{42}, 42},
		{"dotted run", "1.2.3", []string{"1.2", ".3"}, []float64{1.2, 0.3}, 1.5},
		{"trailing point", "7.", []string{"7"}, []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Sum(tt.text)
			if err != nil {
				t.Fatalf("Sum(%q): %v", tt.text, err)
			}
			if !reflect.DeepEqual(r.Tokens, tt.tokens) {
				t.Errorf("tokens = %q, want %q", r.Tokens, tt.tokens)
			}
			if !reflect.DeepEqual(r.Numbers, tt.numbers) {
				t.Errorf("numbers = %v, want %v", r.Numbers, tt.numbers)
			}
			if diff := r.Total - tt.total; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("total = %v, want %v", r.Total, tt.total)
			}
			if r.Mode != ocr.ModeCalculateSum {
				t.Errorf("mode = %v", r.Mode)
			}
		})
	}
}

func TestSumNoNumbers(t *testing.T) {
	for _, text := range []string{"", "no digits here", "... - ."} {
		r, err := Sum(text)
		if !errors.Is(err, ErrNoNumbers) {
			t.Errorf("Sum(%q) error = %v, want ErrNoNumbers", text, err)
		}
		if r.Total != 0 || r.Numbers != nil {
			t.Errorf("Sum(%q) must not compute a total, got %+v", text, r)
		}
	}
}

func TestSumConversionFailureAborts(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	r, err := Sum("5 and " + huge + " and 7")
	if !errors.Is(err, ErrCalculation) {
		t.Fatalf("expected ErrCalculation, got %v", err)
	}
	if errors.Is(err, ErrNoNumbers) {
		t.Fatal("calculation failure must not look like an empty result")
	}
	if r.Total != 0 || len(r.Numbers) != 0 {
		t.Fatalf("partial sum leaked: %+v", r)
	}
}

func TestPassthroughIdentity(t *testing.T) {
	for _, text := range []string{"", "Hello, world", "line 1\nline 2\n\ttabbed", "Ünïcödé 12.5"} {
		r, err := Process(ocr.ModeExtractText, text)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if r.Text != text {
			t.Errorf("passthrough changed %q to %q", text, r.Text)
		}
		if r.Numbers != nil {
			t.Errorf("passthrough parsed numbers from %q", text)
		}
	}
}

func TestProcessDispatch(t *testing.T) {
	r, err := Process(ocr.ModeCalculateSum, "1 2")
	if err != nil || r.Total != 3 {
		t.Fatalf("Process(sum) = %+v, %v", r, err)
	}
	if _, err := Process(ocr.Mode(99), "1"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100.00"},
		{600, "600.00"},
		{1234.5, "1,234.50"},
		{-3, "-3.00"},
		{0.75, "0.75"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	r, err := Sum("100\n200\n300")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.FormattedNumbers(); !reflect.DeepEqual(got, []string{"100.00", "200.00", "300.00"}) {
		t.Errorf("FormattedNumbers = %q", got)
	}
	if r.FormattedTotal() != "600.00" {
		t.Errorf("FormattedTotal = %q", r.FormattedTotal())
	}
	if r.PlainTotal() != "600" {
		t.Errorf("PlainTotal = %q", r.PlainTotal())
	}
	if r.NumbersText() != "100.00\n200.00\n300.00" {
		t.Errorf("NumbersText = %q", r.NumbersText())
	}
}
