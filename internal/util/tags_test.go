package util

import (
	"reflect"
	"testing"
)

func TestCanonicalTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "nil input",
			in:   nil,
			want: nil,
		},
		{
			name: "trims and collapses whitespace",
			in:   []string{"  Card   Game ", "Nautical"},
			want: []string{"Card Game", "Nautical"},
		},
		{
			name: "dedupes case-insensitively keeping first spelling",
			in:   []string{"Card Game", "card game", "CARD GAME"},
			want: []string{"Card Game"},
		},
		{
			name: "drops empty entries",
			in:   []string{"", "   ", "Trick-taking"},
			want: []string{"Trick-taking"},
		},
		{
			name: "all empty collapses to nil",
			in:   []string{"", "  "},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CanonicalTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
