package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"unicode"

	"github.com/google/uuid"
	tts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"

	"github.com/iabetor/stream2pod/internal/logger"
)

// 腾讯云 TextToVoice 语种参数
const (
	tencentLangChinese int64 = 1
	tencentLangEnglish int64 = 2
)

// TencentEngine 使用腾讯云 TTS 实现语音合成。
// 音色为腾讯云的数字 VoiceType，如 "101051"。
type TencentEngine struct {
	client   *tts.Client
	speed    float64
	maxChars int
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	Region    string
	Speed     float64
	// MaxChars 单次请求的最大字符数，超长台词按句切分后分多次合成。
	MaxChars int
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 150
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[tts] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 引擎已初始化 (region=%s, max_chars=%d)", cfg.Region, cfg.MaxChars)

	return &TencentEngine{
		client:   client,
		speed:    cfg.Speed,
		maxChars: cfg.MaxChars,
	}, nil
}

// Synthesize 将文本合成为 MP3 字节。超过 MaxChars 的文本分段请求后按顺序拼接。
func (e *TencentEngine) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	voiceType, err := parseVoiceType(voice)
	if err != nil {
		return nil, err
	}

	chunks := mergeSentences(text, e.maxChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 文本为空")
	}

	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %d 个字符 (%d 段)，音色=%d", len([]rune(text)), len(chunks), voiceType)

	var out bytes.Buffer
	for _, chunk := range chunks {
		data, err := e.synthesizeChunk(ctx, chunk, voiceType)
		if err != nil {
			return nil, err
		}
		out.Write(data)
	}
	return out.Bytes(), nil
}

func (e *TencentEngine) synthesizeChunk(ctx context.Context, text string, voiceType int64) ([]byte, error) {
	request := tts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(text)
	request.SessionId = common.StringPtr(uuid.NewString())
	request.VoiceType = common.Int64Ptr(voiceType)
	request.PrimaryLanguage = common.Int64Ptr(primaryLanguage(text))
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(tencentSpeed(e.speed))
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 未返回音频数据")
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("[tts] Base64 解码失败: %w", err)
	}
	return mp3Data, nil
}

func parseVoiceType(voice string) (int64, error) {
	v, err := strconv.ParseInt(voice, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("[tts] 腾讯云音色必须是数字 VoiceType: %q", voice)
	}
	return v, nil
}

// primaryLanguage 文本中含汉字时按中文合成，否则按英文。
func primaryLanguage(text string) int64 {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return tencentLangChinese
		}
	}
	return tencentLangEnglish
}

// tencentSpeed 将倍速（1.0 为正常）换算为腾讯云的 [-2, 6] 档位，0 为正常语速。
func tencentSpeed(rate float64) float64 {
	switch {
	case rate <= 0 || rate == 1:
		return 0
	case rate < 1:
		return clamp((rate-1)*4, -2, 0)
	default:
		return clamp((rate-1)*2, 0, 6)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
