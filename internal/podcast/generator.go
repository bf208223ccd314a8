package podcast

import (
	"context"
	"strings"
	"time"

	"github.com/iabetor/stream2pod/internal/logger"
)

// TextGenerator 是一次性文本补全服务，由 llm 包实现。
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator 调用文本生成服务，把原文改写为严格交替的双人对话脚本。
type Generator struct {
	llm     TextGenerator
	timeout time.Duration
}

// NewGenerator 创建脚本生成器。timeout 为单次生成调用的超时，0 表示不额外限制。
func NewGenerator(llm TextGenerator, timeout time.Duration) *Generator {
	return &Generator{llm: llm, timeout: timeout}
}

// Generate 根据原文生成播客脚本。
// 上游调用失败、超时或输出中没有可用台词时返回 *GenerationError，不会返回空脚本。
func (g *Generator) Generate(ctx context.Context, src SourceText) (Script, error) {
	if strings.TrimSpace(src.Content) == "" {
		return nil, &GenerationError{Op: "script", Err: ErrEmptySource}
	}

	logger.Debugf("[podcast] 正在生成播客脚本，原文 %d 个字符，来源=%s", len([]rune(src.Content)), src.Origin)

	script, err := g.complete(ctx, "script", scriptPrompt(src.Content))
	if err != nil {
		return nil, err
	}

	logger.Infof("[podcast] 播客脚本生成完成，共 %d 句台词", len(script))
	return script, nil
}

// GenerateAnswer 生成直接回答听众问题的简短双人对话（不超过 MaxAnswerLines 句）。
// 与原文无关，可单独调用；音色交替从第一位主持人重新开始。
func (g *Generator) GenerateAnswer(ctx context.Context, question string) (Script, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &GenerationError{Op: "answer", Err: ErrEmptySource}
	}

	script, err := g.complete(ctx, "answer", answerPrompt(question))
	if err != nil {
		return nil, err
	}

	if len(script) > MaxAnswerLines {
		logger.Debugf("[podcast] 回答脚本有 %d 句，截断为 %d 句", len(script), MaxAnswerLines)
		script = script[:MaxAnswerLines]
	}

	logger.Infof("[podcast] 回答脚本生成完成，共 %d 句台词", len(script))
	return script, nil
}

func (g *Generator) complete(ctx context.Context, op, prompt string) (Script, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, &GenerationError{Op: op, Err: err}
	}

	script := ParseScript(raw)
	if len(script) == 0 {
		return nil, &GenerationError{Op: op, Err: ErrNoDialogue}
	}
	return script, nil
}
