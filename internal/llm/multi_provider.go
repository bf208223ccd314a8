package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"github.com/iabetor/stream2pod/internal/logger"
)

// providerEntry 是一个 Provider 及其配置的组合。
type providerEntry struct {
	name     string
	provider Provider
}

// MultiProvider 实现多 LLM 自动降级。
// 按优先级列表顺序尝试，当前模型请求失败时自动切换到下一个。
type MultiProvider struct {
	entries []providerEntry
	current int // 当前活跃索引
	mu      sync.RWMutex
}

// NewMultiProvider 根据模型配置列表创建 MultiProvider。
func NewMultiProvider(ctx context.Context, configs []ModelConfig) (*MultiProvider, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("至少需要一个 LLM 模型配置")
	}

	// 单个模型初始化失败（如未配置 API Key）只跳过该模型
	var lastErr error
	entries := make([]providerEntry, 0, len(configs))
	for _, cfg := range configs {
		p, err := newProvider(ctx, cfg)
		if err != nil {
			lastErr = fmt.Errorf("初始化模型 [%s] 失败: %w", cfg.Name, err)
			logger.Warnf("[llm] %v，已跳过", lastErr)
			continue
		}
		entries = append(entries, providerEntry{name: cfg.Name, provider: p})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("没有可用的 LLM 模型: %w", lastErr)
	}

	m := newMultiProvider(entries)
	logger.Infof("[llm] 多模型已初始化，共 %d 个模型：%s",
		len(entries), formatModelNames(entries))
	return m, nil
}

func newMultiProvider(entries []providerEntry) *MultiProvider {
	return &MultiProvider{entries: entries}
}

// CurrentName 返回当前活跃模型的名称。
func (m *MultiProvider) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.current].name
}

// Complete 实现 Provider 接口，支持自动降级。
// 从当前活跃模型开始尝试，失败时切换到下一个，直到所有模型都尝试过。
func (m *MultiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.RLock()
	startIdx := m.current
	total := len(m.entries)
	m.mu.RUnlock()

	var lastErr error

	for i := 0; i < total; i++ {
		idx := (startIdx + i) % total
		entry := m.entries[idx]

		logger.Debugf("[llm] 尝试模型 [%s] (索引 %d/%d)", entry.name, idx+1, total)

		text, err := entry.provider.Complete(ctx, prompt)
		if err == nil {
			if idx != startIdx {
				m.mu.Lock()
				m.current = idx
				m.mu.Unlock()
				logger.Infof("[llm] 切换到模型 [%s]", entry.name)
			}
			return text, nil
		}

		lastErr = err
		logger.Warnf("[llm] 模型 [%s] 请求失败: %v", entry.name, err)

		// 调用方已取消或超时，降级没有意义
		if ctx.Err() != nil {
			return "", err
		}

		if shouldFallback(err) {
			logger.Infof("[llm] 模型 [%s] 触发降级，尝试下一个模型", entry.name)
			nextIdx := (idx + 1) % total
			m.mu.Lock()
			m.current = nextIdx
			m.mu.Unlock()
			continue
		}

		return "", err
	}

	return "", fmt.Errorf("所有 LLM 模型均不可用，最后错误: %w", lastErr)
}

// Close 关闭持有连接的后端。
func (m *MultiProvider) Close() error {
	return closeEntries(m.entries)
}

func closeEntries(entries []providerEntry) error {
	var errs []error
	for _, e := range entries {
		if c, ok := e.provider.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("关闭模型 [%s]: %w", e.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// statusCode 提取上游返回的 HTTP 状态码，没有时返回 0。
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

// shouldFallback 判断错误是否应该触发降级到下一个模型。
func shouldFallback(err error) bool {
	if err == nil {
		return false
	}

	switch code := statusCode(err); {
	case code == http.StatusPaymentRequired,
		code == http.StatusTooManyRequests,
		code >= http.StatusInternalServerError:
		return true
	case code != 0:
		return false
	}

	errMsg := strings.ToLower(err.Error())

	// HTTP 状态码类错误
	if strings.Contains(errMsg, "status code 402") ||
		strings.Contains(errMsg, "status code 429") ||
		strings.Contains(errMsg, "status code 503") ||
		strings.Contains(errMsg, "状态码 429") ||
		strings.Contains(errMsg, "状态码 503") {
		return true
	}

	// 关键词匹配
	fallbackKeywords := []string{
		"insufficient", "balance", "quota", "resource_exhausted",
		"rate limit", "too many requests", "unavailable",
		"余额不足", "额度", "限流",
	}
	for _, kw := range fallbackKeywords {
		if strings.Contains(errMsg, kw) {
			return true
		}
	}

	// 网络/超时类错误
	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") ||
		strings.Contains(errMsg, "connection refused") {
		return true
	}

	return false
}

// formatModelNames 格式化模型名称列表用于日志。
func formatModelNames(entries []providerEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return strings.Join(names, " → ")
}
