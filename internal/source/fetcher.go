// Package source 根据 URL 抓取原文并提取为纯文本，支持 HTML 网页、RSS/Atom 订阅和纯文本。
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"

	"github.com/iabetor/stream2pod/internal/config"
	"github.com/iabetor/stream2pod/internal/logger"
	"github.com/iabetor/stream2pod/internal/podcast"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBytes     = 4 << 20
	defaultUserAgent    = "stream2pod/1.0"
	defaultMaxItems     = 20     // 订阅源最多取的条目数
	defaultMaxChars     = 100000 // 交给模型的原文最大字符数
)

var (
	errUnsupportedScheme  = errors.New("仅支持 http/https 地址")
	errUnsupportedContent = errors.New("不支持的内容类型")
	// 超长原文直接拒绝，截断会丢掉后半部分的话题
	errSourceTooLong = errors.New("原文过长")
)

// Fetcher 抓取 URL 并提取正文。
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	maxBytes  int64
	maxChars  int
	userAgent string
	maxItems  int
}

// NewFetcher 创建原文抓取器。
func NewFetcher(cfg config.SourceConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		parser:    gofeed.NewParser(),
		maxBytes:  maxBytes,
		maxChars:  maxChars,
		userAgent: ua,
		maxItems:  defaultMaxItems,
	}
}

// Fetch 抓取原文。任何失败都返回 *podcast.RetrievalError。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (podcast.SourceText, error) {
	src, err := f.fetch(ctx, rawURL)
	if err != nil {
		return podcast.SourceText{}, &podcast.RetrievalError{URL: rawURL, Err: err}
	}
	logger.Infof("[source] 已获取原文 %s: %q，%d 个字符", src.Origin, src.Title, len([]rune(src.Content)))
	return src, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (podcast.SourceText, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return podcast.SourceText{}, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return podcast.SourceText{}, errUnsupportedScheme
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return podcast.SourceText{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return podcast.SourceText{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return podcast.SourceText{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return podcast.SourceText{}, fmt.Errorf("读取响应失败: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		logger.Warnf("[source] %s 超过 %d 字节，拒绝处理", u, f.maxBytes)
		return podcast.SourceText{}, fmt.Errorf("%w: 响应超过 %d 字节", errSourceTooLong, f.maxBytes)
	}

	origin := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		origin = resp.Request.URL.String()
	}

	src, err := f.extract(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return podcast.SourceText{}, err
	}
	src.Origin = origin
	if strings.TrimSpace(src.Content) == "" {
		return podcast.SourceText{}, podcast.ErrEmptySource
	}
	if n := utf8.RuneCountInString(src.Content); n > f.maxChars {
		logger.Warnf("[source] %s 正文 %d 个字符，超过上限 %d，拒绝处理", origin, n, f.maxChars)
		return podcast.SourceText{}, fmt.Errorf("%w: 正文 %d 个字符，上限 %d", errSourceTooLong, n, f.maxChars)
	}
	return src, nil
}

type contentKind int

const (
	kindUnknown contentKind = iota
	kindHTML
	kindFeed
	kindText
)

// extract 按内容类型选择提取方式。
func (f *Fetcher) extract(body []byte, contentType string) (podcast.SourceText, error) {
	switch detectKind(body, contentType) {
	case kindFeed:
		feed, err := f.parser.Parse(bytes.NewReader(body))
		if err == nil {
			return textFromFeed(feed, f.maxItems), nil
		}
		// 声明为 XML 但不是订阅源，按 HTML 兜底
		logger.Debugf("[source] 订阅源解析失败，按 HTML 处理: %v", err)
		fallthrough
	case kindHTML:
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			r = bytes.NewReader(body)
		}
		return textFromHTML(r)
	case kindText:
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			r = bytes.NewReader(body)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return podcast.SourceText{}, err
		}
		return podcast.SourceText{Content: normalizeText(string(data))}, nil
	default:
		return podcast.SourceText{}, fmt.Errorf("%w: %s", errUnsupportedContent, contentType)
	}
}

// detectKind 优先使用 Content-Type，缺失或不明确时嗅探内容。
func detectKind(body []byte, contentType string) contentKind {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.Contains(mediaType, "rss"), strings.Contains(mediaType, "atom"):
		return kindFeed
	case mediaType == "text/html", mediaType == "application/xhtml+xml":
		return kindHTML
	case strings.HasSuffix(mediaType, "/xml"):
		return kindFeed
	case mediaType == "text/plain", mediaType == "text/markdown":
		return kindText
	}

	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	switch {
	case strings.HasPrefix(head, "<?xml"), strings.HasPrefix(head, "<rss"), strings.HasPrefix(head, "<feed"):
		return kindFeed
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	switch sniffed {
	case "text/html":
		return kindHTML
	case "text/xml":
		return kindFeed
	case "text/plain":
		return kindText
	}
	return kindUnknown
}
