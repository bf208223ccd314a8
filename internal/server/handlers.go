package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iabetor/stream2pod/internal/audio"
	"github.com/iabetor/stream2pod/internal/history"
	"github.com/iabetor/stream2pod/internal/logger"
	"github.com/iabetor/stream2pod/internal/podcast"
)

const recordTimeout = 2 * time.Second

type urlRequest struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt" binding:"required"`
}

type questionRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question" binding:"required"`
	// Script 为前端回传的当前脚本，目前不参与生成
	Script string `json:"script"`
}

type scriptResponse struct {
	RequestID string   `json:"request_id"`
	Script    string   `json:"script"`
	Lines     []string `json:"lines"`
}

type answerResponse struct {
	RequestID string   `json:"request_id"`
	Ans       string   `json:"ans"`
	Lines     []string `json:"lines"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": s.cfg.Message})
}

// handlePodcast POST /url：抓取原文并返回完整播客音频。
func (s *Server) handlePodcast(c *gin.Context) {
	var req urlRequest
	if err := bindJSON(c, &req); err != nil {
		abortInvalid(c, err)
		return
	}

	start := time.Now()
	ep, err := s.studio.Produce(c.Request.Context(), req.Prompt)
	s.record(c, history.KindPodcast, req.UserID, req.Prompt, start, ep, err)
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeAudio(c, ep)
}

// handleAnswer POST /answer：生成回答并返回音频。
func (s *Server) handleAnswer(c *gin.Context) {
	var req questionRequest
	if err := bindJSON(c, &req); err != nil {
		abortInvalid(c, err)
		return
	}

	start := time.Now()
	ep, err := s.studio.ProduceAnswer(c.Request.Context(), req.Question)
	s.record(c, history.KindAnswer, req.UserID, req.Question, start, ep, err)
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeAudio(c, ep)
}

// handleGetScript POST /getscript：只生成脚本文本。
func (s *Server) handleGetScript(c *gin.Context) {
	var req urlRequest
	if err := bindJSON(c, &req); err != nil {
		abortInvalid(c, err)
		return
	}

	start := time.Now()
	script, err := s.studio.Script(c.Request.Context(), req.Prompt)
	s.record(c, history.KindScript, req.UserID, req.Prompt, start, &podcast.Episode{Script: script}, err)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, scriptResponse{
		RequestID: c.GetString(ctxRequestID),
		Script:    script.String(),
		Lines:     script.Texts(),
	})
}

// handleAskQuestion POST /askquestion：只生成回答脚本文本。
func (s *Server) handleAskQuestion(c *gin.Context) {
	var req questionRequest
	if err := bindJSON(c, &req); err != nil {
		abortInvalid(c, err)
		return
	}

	start := time.Now()
	script, err := s.studio.Answer(c.Request.Context(), req.Question)
	s.record(c, history.KindQuestion, req.UserID, req.Question, start, &podcast.Episode{Script: script}, err)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, answerResponse{
		RequestID: c.GetString(ctxRequestID),
		Ans:       script.String(),
		Lines:     script.Texts(),
	})
}

// handleHistory GET /history?user_id=&limit=
func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.String(http.StatusNotFound, "%s: 请求历史未启用", reasonNotFound)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortInvalid(c, fmt.Errorf("limit 必须是非负整数: %q", raw))
			return
		}
		limit = n
	}

	records, err := s.history.List(c.Request.Context(), c.Query("user_id"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// bindJSON 解析请求体，必填字段只有空白时同样视为缺失。
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	switch r := req.(type) {
	case *urlRequest:
		if r.Prompt = strings.TrimSpace(r.Prompt); r.Prompt == "" {
			return errors.New("prompt 不能为空")
		}
	case *questionRequest:
		if r.Question = strings.TrimSpace(r.Question); r.Question == "" {
			return errors.New("question 不能为空")
		}
	}
	return nil
}

// writeAudio 一次性写出完整音频，不会返回截断的音频。
func writeAudio(c *gin.Context, ep *podcast.Episode) {
	headers := map[string]string{
		"X-Podcast-Lines": strconv.Itoa(len(ep.Script)),
	}
	if d, err := audio.Duration(ep.Audio); err == nil {
		headers["X-Podcast-Duration"] = strconv.FormatFloat(d.Seconds(), 'f', 2, 64)
	} else {
		logger.Debugf("[server] 无法探测音频时长: %v", err)
	}

	c.DataFromReader(http.StatusOK, int64(len(ep.Audio)), "audio/mpeg", bytes.NewReader(ep.Audio), headers)
}

// record 写入请求历史，客户端断开后仍会记录。
func (s *Server) record(c *gin.Context, kind, userID, source string, start time.Time, ep *podcast.Episode, err error) {
	if s.history == nil {
		return
	}

	r := history.Record{
		RequestID: c.GetString(ctxRequestID),
		UserID:    userID,
		Kind:      kind,
		Source:    source,
		Status:    history.StatusOK,
		ElapsedMS: time.Since(start).Milliseconds(),
		CreatedAt: start,
	}
	if err != nil {
		r.Status = history.StatusError
		_, r.Reason = classify(err)
	} else if ep != nil {
		r.Lines = len(ep.Script)
		r.Bytes = len(ep.Audio)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), recordTimeout)
	defer cancel()
	if err := s.history.Record(ctx, r); err != nil {
		logger.Warnf("[server] 记录请求历史失败: %v", err)
	}
}
