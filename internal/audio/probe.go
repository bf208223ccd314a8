// Package audio 提供对合成结果的 MP3 探测。
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 始终输出 16-bit 立体声 PCM，每帧 4 字节
const bytesPerFrame = 4

// ErrEmpty 表示没有音频数据。
var ErrEmpty = errors.New("[audio] 音频数据为空")

// Duration 解析 MP3 数据并返回播放时长。
func Duration(data []byte) (time.Duration, error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("[audio] MP3 解码失败: %w", err)
	}

	sampleRate := decoder.SampleRate()
	length := decoder.Length()
	if sampleRate <= 0 || length <= 0 {
		return 0, fmt.Errorf("[audio] 无法确定 MP3 时长 (rate=%d, length=%d)", sampleRate, length)
	}

	samples := length / bytesPerFrame
	return time.Duration(samples) * time.Second / time.Duration(sampleRate), nil
}
