package tts

import (
	"context"
	"fmt"

	"github.com/iabetor/stream2pod/internal/config"
)

// Engine 定义语音合成后端接口。
type Engine interface {
	// Synthesize 用指定音色将文本转换为 MP3 音频字节。
	// 同一引擎返回的片段编码参数一致，可以直接首尾拼接。
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// New 根据配置创建语音合成引擎。
func New(cfg config.TTSConfig) (Engine, error) {
	switch cfg.Engine {
	case "edge", "":
		return NewEdgeEngine(), nil
	case "tencent":
		return NewTencentEngine(TencentConfig{
			SecretID:  cfg.Tencent.SecretID,
			SecretKey: cfg.Tencent.SecretKey,
			Region:    cfg.Tencent.Region,
			Speed:     cfg.Tencent.Speed,
			MaxChars:  cfg.Tencent.MaxChars,
		})
	default:
		return nil, fmt.Errorf("[tts] 不支持的引擎: %s", cfg.Engine)
	}
}
