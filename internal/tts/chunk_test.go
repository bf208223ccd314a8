package tts

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractSentence(t *testing.T) {
	tests := []struct {
		input     string
		sentence  string
		remainder string
		found     bool
	}{
		{"你好。世界", "你好。", "世界", true},
		{"你好！世界", "你好！", "世界", true},
		{"你好；世界", "你好；", "世界", true},
		{"Hello. World", "Hello.", " World", true},
		{"Hello? World", "Hello?", " World", true},
		{"line1\nline2", "line1\n", "line2", true},
		{"First. Second. Third.", "First.", " Second. Third.", true},
		{"no sentence ending here", "", "no sentence ending here", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		sentence, remainder, found := extractSentence(tt.input)
		if found != tt.found || sentence != tt.sentence || remainder != tt.remainder {
			t.Errorf("extractSentence(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.input, sentence, remainder, found, tt.sentence, tt.remainder, tt.found)
		}
	}
}

func TestMergeSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     []string
	}{
		{"english kept together", "Hello. World", 150, []string{"Hello. World"}},
		{"chinese kept together", "你好。世界", 150, []string{"你好。世界"}},
		{"split at sentence boundary", "一二三四五。六七八九十。甲乙。", 10, []string{"一二三四五。", "六七八九十。甲乙。"}},
		{"english spacing", "One. Two. Three.", 9, []string{"One. Two.", "Three."}},
		{"empty", "", 10, nil},
		{"whitespace only", "  \n ", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSentences(tt.input, tt.maxChars)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("mergeSentences(%q, %d) = %q, want %q", tt.input, tt.maxChars, got, tt.want)
			}
		})
	}
}

func TestMergeSentences_HardSplitsLongSentence(t *testing.T) {
	got := mergeSentences(strings.Repeat("a", 25), 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %q", got)
	}
	if got[2] != "aaaaa" {
		t.Errorf("last chunk = %q", got[2])
	}
}

func TestMergeSentences_RespectsLimit(t *testing.T) {
	text := strings.Repeat("This is a fairly ordinary sentence. ", 20) + strings.Repeat("长", 400) + "。结束。"
	for _, maxChars := range []int{20, 50, 150} {
		for _, chunk := range mergeSentences(text, maxChars) {
			if n := utf8.RuneCountInString(chunk); n > maxChars {
				t.Errorf("maxChars=%d: chunk has %d runes: %q", maxChars, n, chunk)
			}
			if chunk != strings.TrimSpace(chunk) || chunk == "" {
				t.Errorf("maxChars=%d: bad chunk %q", maxChars, chunk)
			}
		}
	}
}
