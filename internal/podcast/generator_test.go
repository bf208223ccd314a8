package podcast

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubLLM struct {
	mu      sync.Mutex
	out     string
	err     error
	delay   time.Duration
	prompts []string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.out, s.err
}

func TestGenerate_NormalizesOutput(t *testing.T) {
	llm := &stubLLM{out: "Line1\n\nLine2\n  \nLine3"}
	gen := NewGenerator(llm, 0)

	script, err := gen.Generate(context.Background(), SourceText{Origin: "https://example.com", Content: "Topic X. Topic Y."})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []string{"Line1", "Line2", "Line3"}
	got := script.Texts()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("script = %q, want %q", got, want)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "Topic X. Topic Y.") {
		t.Errorf("prompt should embed the source text: %q", llm.prompts[0])
	}
	if !strings.Contains(llm.prompts[0], "NO speaker labels") {
		t.Errorf("prompt should forbid speaker labels")
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	upstream := errors.New("quota exceeded")
	gen := NewGenerator(&stubLLM{err: upstream}, 0)

	_, err := gen.Generate(context.Background(), SourceText{Content: "text"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T: %v", err, err)
	}
	if genErr.Op != "script" {
		t.Errorf("Op = %q, want script", genErr.Op)
	}
	if !errors.Is(err, upstream) {
		t.Errorf("error should wrap upstream cause")
	}
}

func TestGenerate_EmptyOutputIsError(t *testing.T) {
	for _, out := range []string{"", "\n  \n", "Host 1:\nHost 2:"} {
		gen := NewGenerator(&stubLLM{out: out}, 0)
		script, err := gen.Generate(context.Background(), SourceText{Content: "text"})
		if !errors.Is(err, ErrNoDialogue) {
			t.Errorf("output %q: expected ErrNoDialogue, got %v", out, err)
		}
		if script != nil {
			t.Errorf("output %q: expected nil script, got %q", out, script.Texts())
		}
	}
}

func TestGenerate_EmptySource(t *testing.T) {
	llm := &stubLLM{out: "unused"}
	gen := NewGenerator(llm, 0)

	_, err := gen.Generate(context.Background(), SourceText{Content: "   "})
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("upstream should not be called for empty source")
	}
}

func TestGenerate_Timeout(t *testing.T) {
	gen := NewGenerator(&stubLLM{out: "late", delay: time.Second}, 20*time.Millisecond)

	_, err := gen.Generate(context.Background(), SourceText{Content: "text"})

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
}

func TestGenerateAnswer_FixedSixLines(t *testing.T) {
	out := strings.Join([]string{
		"Great question! The answer is yes.",
		"Exactly, and I'd add that it is cheap.",
		"For instance, it runs on a Pi.",
		"It also needs no GPU.",
		"So in summary, yes.",
		"Hope that helps!",
	}, "\n")
	llm := &stubLLM{out: out}
	gen := NewGenerator(llm, 0)

	script, err := gen.GenerateAnswer(context.Background(), "Can I run it at home?")
	if err != nil {
		t.Fatalf("GenerateAnswer failed: %v", err)
	}
	if len(script) != 6 || len(script) > MaxAnswerLines {
		t.Fatalf("expected 6 lines, got %d", len(script))
	}

	voices := Voices{A: "a", B: "b"}
	if voices.For(script[0].Position) != "a" || voices.For(script[1].Position) != "b" {
		t.Errorf("answer script must restart alternation at voice A")
	}
	if !strings.Contains(llm.prompts[0], "Can I run it at home?") {
		t.Errorf("prompt should embed the question")
	}
	if !strings.Contains(llm.prompts[0], "NO new questions") {
		t.Errorf("prompt should forbid new questions")
	}
}

func TestGenerateAnswer_CapsLines(t *testing.T) {
	rows := make([]string, 12)
	for i := range rows {
		rows[i] = "answer line"
	}
	gen := NewGenerator(&stubLLM{out: strings.Join(rows, "\n")}, 0)

	script, err := gen.GenerateAnswer(context.Background(), "why?")
	if err != nil {
		t.Fatalf("GenerateAnswer failed: %v", err)
	}
	if len(script) != MaxAnswerLines {
		t.Errorf("expected %d lines, got %d", MaxAnswerLines, len(script))
	}
}

func TestGenerateAnswer_Errors(t *testing.T) {
	gen := NewGenerator(&stubLLM{out: ""}, 0)

	_, err := gen.GenerateAnswer(context.Background(), "why?")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Op != "answer" {
		t.Fatalf("expected answer *GenerationError, got %v", err)
	}

	if _, err := gen.GenerateAnswer(context.Background(), "  "); !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource for blank question, got %v", err)
	}
}
