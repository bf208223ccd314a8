package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"

	"github.com/iabetor/stream2pod/internal/config"
	"github.com/iabetor/stream2pod/internal/database"
	"github.com/iabetor/stream2pod/internal/history"
	"github.com/iabetor/stream2pod/internal/llm"
	"github.com/iabetor/stream2pod/internal/logger"
	"github.com/iabetor/stream2pod/internal/podcast"
	"github.com/iabetor/stream2pod/internal/server"
	"github.com/iabetor/stream2pod/internal/source"
	"github.com/iabetor/stream2pod/internal/tts"
)

func main() {
	configPath := flag.String("config", "configs/stream2pod.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Infof("[main] stream2pod 启动中 (log_level=%s)", cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logger.Errorf("[main] 运行出错: %v", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("[main] stream2pod 已停止")
}

func run(ctx context.Context, cfg *config.Config) error {
	models := make([]llm.ModelConfig, 0, len(cfg.LLM.Models))
	for _, m := range cfg.LLM.Models {
		models = append(models, llm.ModelConfig{
			Name:        m.Name,
			Provider:    m.Provider,
			APIURL:      m.APIURL,
			APIKey:      m.APIKey,
			Model:       m.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLMTimeout(),
		})
	}
	provider, err := llm.NewMultiProvider(ctx, models)
	if err != nil {
		return fmt.Errorf("创建 LLM 失败: %w", err)
	}
	defer provider.Close()

	engine, err := tts.New(cfg.TTS)
	if err != nil {
		return fmt.Errorf("创建 TTS 引擎失败: %w", err)
	}

	// 所有请求共享的合成协程池，排队数超过 MaxQueued 时拒绝新任务
	pool, err := ants.NewPool(cfg.TTS.PoolSize,
		ants.WithMaxBlockingTasks(cfg.TTS.MaxQueued),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Errorf("[main] 合成任务 panic: %v", p)
		}),
	)
	if err != nil {
		return fmt.Errorf("创建协程池失败: %w", err)
	}
	defer pool.Release()

	studio := podcast.NewStudio(
		source.NewFetcher(cfg.Source),
		podcast.NewGenerator(provider, cfg.LLMTimeout()),
		podcast.NewAssembler(engine, podcast.AssemblerConfig{
			Voices:      podcast.Voices{A: cfg.TTS.VoiceA, B: cfg.TTS.VoiceB},
			Timeout:     cfg.TTSTimeout(),
			Pool:        pool,
			Concurrency: cfg.TTS.Concurrency,
		}),
	)

	var hist server.HistoryStore
	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}
		hist = history.NewStore(db)
	}

	logger.Infof("[main] TTS 引擎=%s, 音色=%s/%s, 并发=%d, 模型=%s",
		cfg.TTS.Engine, cfg.TTS.VoiceA, cfg.TTS.VoiceB, cfg.TTS.Concurrency, provider.CurrentName())

	return server.New(cfg.Server, studio, hist).Run(ctx, cfg.ShutdownTimeout())
}
