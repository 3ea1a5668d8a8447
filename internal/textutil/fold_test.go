package textutil

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents", "Atlético Madrid", "atletico madrid"},
		{"umlaut", "Borussia Mönchengladbach", "borussia monchengladbach"},
		{"stroke", "Bodø/Glimt", "bodo/glimt"},
		{"sharp s", "Fußball", "fussball"},
		{"whitespace", "  Real   Madrid  ", "real madrid"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContainsFolded(t *testing.T) {
	if !ContainsFolded("ATLETICO MADRID 2-1 Sevilla | Highlights", "Atlético") {
		t.Fatal("expected accent-insensitive match")
	}
	if !ContainsFolded("Atlético de Madrid resumen", "atletico") {
		t.Fatal("expected reverse accent-insensitive match")
	}
	if ContainsFolded("anything", "   ") {
		t.Fatal("empty needle must not match")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Paris Saint-Germain vs. FC Köln", 3)
	want := []string{"paris", "saint", "germain", "koln"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}
