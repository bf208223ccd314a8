package podcast

import (
	"strings"
	"testing"
)

func TestParseScript_DropsBlankLines(t *testing.T) {
	script := ParseScript("Line1\n\nLine2\n  \nLine3")

	want := []string{"Line1", "Line2", "Line3"}
	got := script.Texts()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, got[i], want[i])
		}
		if script[i].Position != i {
			t.Errorf("line[%d].Position = %d", i, script[i].Position)
		}
	}
}

func TestParseScript_TrimsAndHandlesCRLF(t *testing.T) {
	script := ParseScript("  Welcome back!  \r\n\tThanks for having me.\r\n")

	got := script.Texts()
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if got[0] != "Welcome back!" || got[1] != "Thanks for having me." {
		t.Errorf("unexpected lines: %q", got)
	}
}

func TestParseScript_StripsSpeakerLabels(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Host 1: Welcome to the show.", "Welcome to the show."},
		{"Host 2:Glad to be here.", "Glad to be here."},
		{"**Host 1:** Let's begin.", "Let's begin."},
		{"Speaker A: Right.", "Right."},
		{"host: lowercase label", "lowercase label"},
		{"主持人1：大家好", "大家好"},
		{"- Speaker B: bullet label", "bullet label"},
		{"Hosting a podcast is fun: really.", "Hosting a podcast is fun: really."},
		{"The host said: hello", "The host said: hello"},
		{"Host 12: twelfth host", "twelfth host"},
		{"Hosts: the people who run the show", "Hosts: the people who run the show"},
		{"Speakers: wired or wireless?", "Speakers: wired or wireless?"},
		{"Narrators: who needs them?", "Narrators: who needs them?"},
	}

	for _, tt := range tests {
		script := ParseScript(tt.input)
		if len(script) != 1 {
			t.Errorf("ParseScript(%q): expected 1 line, got %d", tt.input, len(script))
			continue
		}
		if script[0].Text != tt.want {
			t.Errorf("ParseScript(%q) = %q, want %q", tt.input, script[0].Text, tt.want)
		}
	}
}

func TestParseScript_LabelOnlyLineDropped(t *testing.T) {
	script := ParseScript("Host 1:\nHello there.\nHost 2:  \nHi!")

	got := script.Texts()
	if len(got) != 2 || got[0] != "Hello there." || got[1] != "Hi!" {
		t.Errorf("unexpected lines: %q", got)
	}
}

func TestParseScript_Empty(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "   \n\t\n"} {
		if script := ParseScript(raw); len(script) != 0 {
			t.Errorf("ParseScript(%q): expected empty script, got %q", raw, script.Texts())
		}
	}
}

func TestParseScript_NoBlankOrLabelledLines(t *testing.T) {
	raws := []string{
		"Host 1: a\n\nHost 2: b\n \n c \n",
		"**Speaker 1:** x\r\n\r\n**Speaker 2:** y",
		"\n\n\nonly\n\n",
	}
	for _, raw := range raws {
		for _, line := range ParseScript(raw) {
			if strings.TrimSpace(line.Text) == "" {
				t.Errorf("ParseScript(%q) produced blank line", raw)
			}
			if line.Text != strings.TrimSpace(line.Text) {
				t.Errorf("ParseScript(%q) produced untrimmed line %q", raw, line.Text)
			}
			if speakerLabelRe.MatchString(line.Text) {
				t.Errorf("ParseScript(%q) left a speaker label in %q", raw, line.Text)
			}
		}
	}
}

func TestScript_String(t *testing.T) {
	script := NewScript("a", "b", "c")
	if got := script.String(); got != "a\nb\nc" {
		t.Errorf("String() = %q", got)
	}
}

func TestVoices_For(t *testing.T) {
	voices := Voices{A: "voice-a", B: "voice-b"}

	for n := 0; n < 20; n++ {
		want := "voice-a"
		if n%2 == 1 {
			want = "voice-b"
		}
		if got := voices.For(n); got != want {
			t.Errorf("For(%d) = %q, want %q", n, got, want)
		}
	}
}
