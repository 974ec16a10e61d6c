package bgg

import "testing"

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ampersand", "Kingdom &amp; Castle", "Kingdom & Castle"},
		{"right single quote", "Riders&rsquo; Guild", "Riders’ Guild"},
		{"left single quote", "&lsquo;tis the season", "‘tis the season"},
		{"double quotes", "&ldquo;quoted&rdquo;", "“quoted”"},
		{"numeric apostrophe", "it&#039;s", "it's"},
		{"angle brackets", "&lt;b&gt;", "<b>"},
		{"straight quote", "&quot;hi&quot;", `"hi"`},
		{"unknown entity passes through", "caf&eacute;", "caf&eacute;"},
		{"no entities", "Terraforming Mars", "Terraforming Mars"},
		{"bare ampersand untouched", "Ticket to Ride & friends", "Ticket to Ride & friends"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEntities(tt.in); got != tt.want {
				t.Errorf("DecodeEntities(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeEntities_IdempotentOnDecodedText(t *testing.T) {
	inputs := []string{
		"Kingdom & Castle",
		"Riders’ Guild",
		`"quoted" <tagged>`,
		"plain text",
	}
	for _, in := range inputs {
		if got := DecodeEntities(in); got != in {
			t.Errorf("DecodeEntities(%q) changed already-decoded text to %q", in, got)
		}
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"entities only",
			"A game of swords &amp; sails.",
			"A game of swords & sails.",
		},
		{
			"markup after decoding",
			"First paragraph.&lt;br/&gt;&lt;br/&gt;Second paragraph.",
			"First paragraph. Second paragraph.",
		},
		{
			"whitespace collapse",
			"Too   many\n\nspaces.",
			"Too many spaces.",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDescription(tt.in); got != tt.want {
				t.Errorf("CleanDescription(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
