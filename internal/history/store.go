// Package history 记录播客请求的元数据（不保存脚本和音频）。
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iabetor/stream2pod/internal/database"
	"github.com/iabetor/stream2pod/internal/logger"
)

// 请求类型
const (
	KindPodcast  = "podcast"  // POST /url
	KindScript   = "script"   // POST /getscript
	KindQuestion = "question" // POST /askquestion
	KindAnswer   = "answer"   // POST /answer
)

// 请求状态
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Record 一次请求的元数据。
type Record struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"` // 客户端或网关的 X-Request-ID，可重复
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"` // URL 或问题文本
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Lines     int       `json:"lines"`
	Bytes     int       `json:"bytes"`
	ElapsedMS int64     `json:"elapsed_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store 请求历史存储（SQLite）
type Store struct {
	db *database.DB
}

// NewStore 创建请求历史存储，数据库需已完成迁移。
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Record 写入一条请求记录。ID 为空时生成新的 UUID。
func (s *Store) Record(ctx context.Context, r Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO podcast_requests (id, request_id, user_id, kind, source, status, reason, lines, bytes, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestID, r.UserID, r.Kind, r.Source, r.Status, r.Reason, r.Lines, r.Bytes, r.ElapsedMS, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("写入请求记录失败: %w", err)
	}

	logger.Debugf("[history] 已记录请求 %s (request_id=%s, %s, %s)", r.ID, r.RequestID, r.Kind, r.Status)
	return nil
}

// List 按时间倒序返回最近的请求。userID 为空时返回所有用户的记录。
func (s *Store) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT id, request_id, user_id, kind, source, status, reason, lines, bytes, elapsed_ms, created_at
	          FROM podcast_requests`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询请求记录失败: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		var createdAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.RequestID, &r.UserID, &r.Kind, &r.Source, &r.Status, &r.Reason,
			&r.Lines, &r.Bytes, &r.ElapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("读取请求记录失败: %w", err)
		}
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
