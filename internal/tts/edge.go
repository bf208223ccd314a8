package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/stream2pod/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 实现语音合成，
// 通过 edge-tts-go 获取 MP3 音频，原样返回不做解码。
type EdgeEngine struct{}

// NewEdgeEngine 创建 Edge TTS 引擎，音色在每次调用时指定。
func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

type edgeResult struct {
	data []byte
	err  error
}

// Synthesize 将文本合成为 MP3 字节。
func (e *EdgeEngine) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	logger.Debugf("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", len([]rune(text)), voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(voice))
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 开始流式合成失败: %w", err)
	}

	// Stream() 不感知 ctx，由单独的协程读完 channel，避免发送方阻塞
	done := make(chan edgeResult, 1)
	go func() {
		done <- collectAudio(ch)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Debugf("[tts] edge-tts: 收到 %d 字节 MP3 数据", len(res.data))
		return res.data, nil
	}
}

// collectAudio 拼接 Stream() 返回的音频块，type=="audio" 的条目包含 MP3 数据。
func collectAudio(ch <-chan map[string]interface{}) edgeResult {
	var buf bytes.Buffer
	for msg := range ch {
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				buf.Write(data)
			}
		}
	}
	if buf.Len() == 0 {
		return edgeResult{err: fmt.Errorf("[tts] edge-tts: 未收到音频数据")}
	}
	return edgeResult{data: buf.Bytes()}
}
