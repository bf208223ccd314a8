package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider 定义一次性文本补全的 LLM 后端接口。
type Provider interface {
	// Complete 将提示词发送给 LLM，返回完整的文本回复。
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelConfig 描述一个 LLM 模型的连接信息。
type ModelConfig struct {
	Name        string  // 显示名称
	Provider    string  // gemini 或 openai
	APIURL      string  // API 地址，留空使用官方地址
	APIKey      string  // API Key
	Model       string  // 模型名称或接入点 ID
	Temperature float32 // 采样温度
	Timeout     time.Duration
}

// newProvider 根据 cfg.Provider 创建对应的后端。
func newProvider(ctx context.Context, cfg ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "gemini", "":
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("[llm] 不支持的 provider: %s", cfg.Provider)
	}
}
