package podcast

import (
	"errors"
	"fmt"
)

// 错误分类，作为 HTTP 错误响应中的机器可读原因。
const (
	ReasonRetrieval   = "retrieval_error"
	ReasonGeneration  = "generation_error"
	ReasonEmptyScript = "empty_script"
	ReasonSynthesis   = "synthesis_error"
	ReasonUnknown     = "internal_error"
)

var (
	// ErrNoDialogue 表示模型输出经过规整后没有任何可用台词。
	ErrNoDialogue = errors.New("模型未返回可用台词")
	// ErrEmptySource 表示原文为空，无法生成脚本。
	ErrEmptySource = errors.New("原文内容为空")
	// ErrEmptySegment 表示某句台词合成后没有音频数据。
	ErrEmptySegment = errors.New("合成结果为空")
)

// RetrievalError 表示无法获取原文。
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("[source] 获取原文 %s 失败: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError 表示文本生成调用失败或没有返回可用内容。
// Op 为 "script" 或 "answer"。
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("[podcast] 生成%s失败: %v", opLabel(e.Op), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// EmptyScriptError 表示脚本到达合成阶段时没有任何台词。
type EmptyScriptError struct{}

func (e *EmptyScriptError) Error() string {
	return "[podcast] 脚本为空，无法合成音频"
}

// SynthesisError 表示某一句台词合成失败，整个合成流程随之终止。
type SynthesisError struct {
	Position int
	Voice    string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("[podcast] 第 %d 句台词合成失败 (voice=%s): %v", e.Position, e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Reason 返回错误对应的机器可读原因。
func Reason(err error) string {
	var (
		retrievalErr  *RetrievalError
		generationErr *GenerationError
		emptyErr      *EmptyScriptError
		synthesisErr  *SynthesisError
	)
	switch {
	case errors.As(err, &retrievalErr):
		return ReasonRetrieval
	case errors.As(err, &generationErr):
		return ReasonGeneration
	case errors.As(err, &emptyErr):
		return ReasonEmptyScript
	case errors.As(err, &synthesisErr):
		return ReasonSynthesis
	default:
		return ReasonUnknown
	}
}

func opLabel(op string) string {
	switch op {
	case "answer":
		return "回答脚本"
	default:
		return "播客脚本"
	}
}
