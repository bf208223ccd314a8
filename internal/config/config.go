package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 是 stream2pod 的顶层配置结构。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ShutdownSeconds 收到退出信号后等待进行中请求完成的时间。
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
	Message         string `yaml:"message"` // GET / 返回的 message
}

// LLMConfig 文本生成配置。Models 按优先级排列，失败时依次降级。
type LLMConfig struct {
	Models         []ModelConfig `yaml:"models"`
	Temperature    float32       `yaml:"temperature"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
}

// ModelConfig 单个模型的连接信息。
type ModelConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"` // gemini, openai
	APIURL   string `yaml:"api_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	Engine string `yaml:"engine"` // edge, tencent
	// VoiceA 用于偶数位台词（第一位主持人），VoiceB 用于奇数位。
	VoiceA         string `yaml:"voice_a"`
	VoiceB         string `yaml:"voice_b"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// Concurrency 每个请求内并行合成的台词数，1 表示严格串行。
	Concurrency int `yaml:"concurrency"`
	// PoolSize 全局合成协程池大小，所有请求共享。
	PoolSize int `yaml:"pool_size"`
	// MaxQueued 协程池满时允许排队的任务数，超过则拒绝（返回 503）。
	MaxQueued int           `yaml:"max_queued"`
	Tencent   TencentConfig `yaml:"tencent"`
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string  `yaml:"secret_id"`
	SecretKey string  `yaml:"secret_key"`
	Region    string  `yaml:"region"`
	Speed     float64 `yaml:"speed"`
	// MaxChars 单次请求的最大字符数，超长台词会按句拆分。
	MaxChars int `yaml:"max_chars"`
}

// SourceConfig 原文抓取配置。
type SourceConfig struct {
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	MaxBytes       int64 `yaml:"max_bytes"`
	// MaxChars 提取后正文的最大字符数，超过则拒绝该原文而不是截断。
	MaxChars  int    `yaml:"max_chars"`
	UserAgent string `yaml:"user_agent"`
}

// DatabaseConfig 请求历史数据库配置。
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 读取前会尝试加载同目录及当前目录下的 .env，随后展开 ${VAR_NAME} 形式的环境变量。
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}
	return cfg, nil
}

// loadDotEnv 加载存在的 .env 文件；已设置的环境变量不会被覆盖。
// 文件不存在时跳过，存在但格式错误时返回错误。
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("加载 %s 失败: %w", p, err)
		}
	}
	return nil
}

// Validate 检查无法用默认值补全的配置项。
func (c *Config) Validate() error {
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("至少需要一个 llm.models 配置")
	}
	for i, m := range c.LLM.Models {
		switch m.Provider {
		case "gemini", "openai":
		default:
			return fmt.Errorf("llm.models[%d] 未知的 provider: %q", i, m.Provider)
		}
		if m.Model == "" {
			return fmt.Errorf("llm.models[%d] 缺少 model", i)
		}
	}
	switch c.TTS.Engine {
	case "edge":
	case "tencent":
		// 腾讯云音色为数字 VoiceType，不能沿用 Edge 的默认音色
		for _, v := range []string{c.TTS.VoiceA, c.TTS.VoiceB} {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return fmt.Errorf("腾讯云 TTS 的音色必须是数字 VoiceType: %q", v)
			}
		}
	default:
		return fmt.Errorf("未知的 TTS 引擎: %s", c.TTS.Engine)
	}
	if c.TTS.VoiceA == c.TTS.VoiceB {
		return fmt.Errorf("tts.voice_a 与 tts.voice_b 不能相同: %s", c.TTS.VoiceA)
	}
	return nil
}

// LLMTimeout 返回单次文本生成调用的超时时间。
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// TTSTimeout 返回单句合成调用的超时时间。
func (c *Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTS.TimeoutSeconds) * time.Second
}

// SourceTimeout 返回原文抓取的超时时间。
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// ShutdownTimeout 返回优雅关闭的等待时间。
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8000"
	}
	if cfg.Server.ShutdownSeconds == 0 {
		cfg.Server.ShutdownSeconds = 10
	}
	if cfg.Server.Message == "" {
		cfg.Server.Message = "stream2pod is running"
	}

	for i := range cfg.LLM.Models {
		m := &cfg.LLM.Models[i]
		if m.Provider == "" {
			m.Provider = "gemini"
		}
		if m.Name == "" {
			m.Name = m.Model
		}
		// 去除 API Key 两端可能的空白（环境变量展开后常见）
		m.APIKey = strings.TrimSpace(m.APIKey)
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 90
	}

	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "edge"
	}
	if cfg.TTS.VoiceA == "" {
		cfg.TTS.VoiceA = "en-US-AndrewNeural"
	}
	if cfg.TTS.VoiceB == "" {
		cfg.TTS.VoiceB = "en-US-AriaNeural"
	}
	if cfg.TTS.TimeoutSeconds == 0 {
		cfg.TTS.TimeoutSeconds = 30
	}
	if cfg.TTS.Concurrency == 0 {
		cfg.TTS.Concurrency = 4
	}
	if cfg.TTS.PoolSize == 0 {
		cfg.TTS.PoolSize = 32
	}
	if cfg.TTS.MaxQueued == 0 {
		cfg.TTS.MaxQueued = 256
	}
	if cfg.TTS.Tencent.Region == "" {
		cfg.TTS.Tencent.Region = "ap-guangzhou"
	}
	if cfg.TTS.Tencent.Speed == 0 {
		cfg.TTS.Tencent.Speed = 1.0
	}
	if cfg.TTS.Tencent.MaxChars == 0 {
		cfg.TTS.Tencent.MaxChars = 150
	}

	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 15
	}
	if cfg.Source.MaxBytes == 0 {
		cfg.Source.MaxBytes = 4 << 20
	}
	if cfg.Source.MaxChars == 0 {
		cfg.Source.MaxChars = 100000
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = "stream2pod/1.0"
	}

	if cfg.Database.Path == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Database.Path = filepath.Join(home, ".stream2pod", "stream2pod.db")
		} else {
			cfg.Database.Path = "./stream2pod.db"
		}
	} else if strings.HasPrefix(cfg.Database.Path, "~/") {
		// Go 不会自动展开 ~，需要手动替换为用户主目录
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Database.Path = home + cfg.Database.Path[1:]
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	cfg.TTS.Tencent.SecretID = strings.TrimSpace(cfg.TTS.Tencent.SecretID)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
}
