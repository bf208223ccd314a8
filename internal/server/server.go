// Package server 提供 stream2pod 的 HTTP 接口。
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iabetor/stream2pod/internal/config"
	"github.com/iabetor/stream2pod/internal/history"
	"github.com/iabetor/stream2pod/internal/logger"
	"github.com/iabetor/stream2pod/internal/podcast"
)

// Producer 生成脚本和音频，*podcast.Studio 满足该接口。
type Producer interface {
	Script(ctx context.Context, url string) (podcast.Script, error)
	Produce(ctx context.Context, url string) (*podcast.Episode, error)
	Answer(ctx context.Context, question string) (podcast.Script, error)
	ProduceAnswer(ctx context.Context, question string) (*podcast.Episode, error)
}

// HistoryStore 记录请求元数据，*history.Store 满足该接口。
type HistoryStore interface {
	Record(ctx context.Context, r history.Record) error
	List(ctx context.Context, userID string, limit int) ([]history.Record, error)
}

// Server HTTP 网关。
type Server struct {
	cfg     config.ServerConfig
	studio  Producer
	history HistoryStore // 为 nil 时不记录历史
	engine  *gin.Engine
}

// New 创建 HTTP 网关。hist 可以为 nil。
func New(cfg config.ServerConfig, studio Producer, hist HistoryStore) *Server {
	s := &Server{
		cfg:     cfg,
		studio:  studio,
		history: hist,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), corsMiddleware(), requestIDMiddleware(), accessLogMiddleware())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.POST("/url", s.handlePodcast)
	s.engine.POST("/getscript", s.handleGetScript)
	s.engine.POST("/askquestion", s.handleAskQuestion)
	s.engine.POST("/answer", s.handleAnswer)
	s.engine.GET("/history", s.handleHistory)
}

// Handler 返回 HTTP 处理器。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 cfg.Addr 并处理请求，ctx 取消后优雅关闭，最多等待 shutdownTimeout。
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve 在给定的 listener 上处理请求。
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[server] 开始监听 %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("[server] 正在关闭，等待进行中的请求 (最多 %v)", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("[server] 已关闭")
	return nil
}
