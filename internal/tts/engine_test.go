package tts

import (
	"context"
	"testing"

	"github.com/iabetor/stream2pod/internal/config"
)

func TestNew(t *testing.T) {
	e, err := New(config.TTSConfig{Engine: "edge"})
	if err != nil {
		t.Fatalf("New(edge) failed: %v", err)
	}
	if _, ok := e.(*EdgeEngine); !ok {
		t.Errorf("expected *EdgeEngine, got %T", e)
	}

	if _, err := New(config.TTSConfig{Engine: "tencent"}); err == nil {
		t.Error("tencent without credentials should fail")
	}

	cfg := config.TTSConfig{Engine: "tencent"}
	cfg.Tencent.SecretID = "id"
	cfg.Tencent.SecretKey = "key"
	if e, err := New(cfg); err != nil {
		t.Errorf("New(tencent) failed: %v", err)
	} else if _, ok := e.(*TencentEngine); !ok {
		t.Errorf("expected *TencentEngine, got %T", e)
	}

	if _, err := New(config.TTSConfig{Engine: "piper"}); err == nil {
		t.Error("unknown engine should fail")
	}
}

func TestCollectAudio(t *testing.T) {
	ch := make(chan map[string]interface{}, 4)
	ch <- map[string]interface{}{"type": "audio", "data": []byte("ab")}
	ch <- map[string]interface{}{"type": "WordBoundary", "offset": 100}
	ch <- map[string]interface{}{"type": "audio", "data": []byte("cd")}
	close(ch)

	res := collectAudio(ch)
	if res.err != nil {
		t.Fatalf("collectAudio failed: %v", res.err)
	}
	if string(res.data) != "abcd" {
		t.Errorf("data = %q, want abcd", res.data)
	}
}

func TestCollectAudio_NoAudio(t *testing.T) {
	ch := make(chan map[string]interface{})
	close(ch)
	if res := collectAudio(ch); res.err == nil {
		t.Error("expected error when no audio received")
	}
}

func TestParseVoiceType(t *testing.T) {
	if v, err := parseVoiceType("101051"); err != nil || v != 101051 {
		t.Errorf("parseVoiceType = %d, %v", v, err)
	}
	for _, bad := range []string{"", "en-US-AriaNeural", "-1", "0"} {
		if _, err := parseVoiceType(bad); err == nil {
			t.Errorf("parseVoiceType(%q) should fail", bad)
		}
	}
}

func TestTencentSynthesize_InvalidVoice(t *testing.T) {
	e, err := NewTencentEngine(TencentConfig{SecretID: "id", SecretKey: "key"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Synthesize(context.Background(), "hello", "en-US-AriaNeural"); err == nil {
		t.Error("expected error for non-numeric voice")
	}
}

func TestPrimaryLanguage(t *testing.T) {
	if primaryLanguage("Hello there") != tencentLangEnglish {
		t.Error("english text should use english")
	}
	if primaryLanguage("Hello 世界") != tencentLangChinese {
		t.Error("text with han characters should use chinese")
	}
}

func TestTencentSpeed(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{0, 0},
		{1, 0},
		{0.5, -2},
		{0.75, -1},
		{1.5, 1},
		{2, 2},
		{10, 6},
	}
	for _, tt := range tests {
		if got := tencentSpeed(tt.rate); got != tt.want {
			t.Errorf("tencentSpeed(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}
