package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider 通过 Google Gemini API 生成文本。
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiProvider 创建 Gemini 提供者。客户端持有连接，用完需调用 Close。
func NewGeminiProvider(ctx context.Context, cfg ModelConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[llm] 模型 %s 缺少 API Key", cfg.Model)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.APIURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("[llm] 创建 Gemini 客户端失败: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)

	return &GeminiProvider{client: client, model: model, name: cfg.Model}, nil
}

// Complete 发送提示词，拼接第一个候选结果中的全部文本片段。
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("[llm] 请求失败: %w", err)
	}
	return candidateText(resp)
}

// Close 关闭底层客户端。
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("[llm] Gemini 未返回候选结果")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
