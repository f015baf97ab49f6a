package metrics

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"punctuation stripped", "Returns accepted, within 30 days.", "returns accepted within 30 days"},
		{"collapse whitespace", "a   b\t c\nd", "a b c d"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Standard shipping takes 5-7 business days.")
	want := []string{"standard", "shipping", "takes", "5", "7", "business", "days"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}

	if got := Tokenize(""); got != nil {
		t.Errorf("Tokenize(\"\") = %v, want nil", got)
	}
}

func TestKeyTermsFiltersStopWords(t *testing.T) {
	terms := KeyTerms("You can return items within 30 days")
	want := []string{"30", "days", "items", "return", "within"}
	if got := SortedTerms(terms); !reflect.DeepEqual(got, want) {
		t.Errorf("KeyTerms() = %v, want %v", got, want)
	}
}

func TestOverlapRatio(t *testing.T) {
	a := KeyTerms("return items within 30 days")
	b := KeyTerms("returns accepted within 30 days")

	// a 的 5 个关键词中 within/30/days 出现在 b 中
	if got := OverlapRatio(a, b); got != 0.6 {
		t.Errorf("OverlapRatio() = %v, want 0.6", got)
	}

	if got := OverlapRatio(map[string]bool{}, b); got != 0 {
		t.Errorf("OverlapRatio(empty, b) = %v, want 0", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "refund policy", "refund policy", 1.0},
		{"disjoint", "refund policy", "shipping time", 0.0},
		{"both empty", "", "", 1.0},
		{"partial", "refund policy details", "refund policy", 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(KeyTerms(tt.a), KeyTerms(tt.b))
			if got != tt.want {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSplitClaims(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{
			name:   "single sentence",
			answer: "You can return items within 30 days",
			want:   []string{"You can return items within 30 days"},
		},
		{
			name:   "coordinate clauses split",
			answer: "The product costs $100 and comes in 3 colors",
			want:   []string{"The product costs $100", "comes in 3 colors"},
		},
		{
			name:   "multiple sentences",
			answer: "Shipping takes 5 days. Returns are free.",
			want:   []string{"Shipping takes 5 days", "Returns are free"},
		},
		{
			name:   "empty answer",
			answer: "",
			want:   nil,
		},
		{
			name:   "short fragment dropped",
			answer: "Yes. Shipping takes 5 days.",
			want:   []string{"Shipping takes 5 days"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitClaims(tt.answer)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitClaims(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
