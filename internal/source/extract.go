package source

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/iabetor/stream2pod/internal/podcast"
)

// 不属于正文的元素
const noiseSelector = "script, style, noscript, template, svg, iframe, nav, header, footer, aside, form, button"

// 按段落提取的块级元素
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, figcaption"

// textFromHTML 提取网页标题和正文，优先使用 article/main 区域。
func textFromHTML(r io.Reader) (podcast.SourceText, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return podcast.SourceText{}, err
	}

	title := strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paragraphs []string
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// 嵌套的块只取最内层，避免重复
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpaces(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	content := strings.Join(paragraphs, "\n")
	if content == "" {
		content = normalizeText(root.Text())
	}

	return podcast.SourceText{Title: title, Content: content}, nil
}

// textFromFeed 将订阅源的条目拼接为原文，每个条目为标题加正文。
func textFromFeed(feed *gofeed.Feed, maxItems int) podcast.SourceText {
	if maxItems <= 0 || maxItems > len(feed.Items) {
		maxItems = len(feed.Items)
	}

	var sb strings.Builder
	if desc := stripHTML(feed.Description); desc != "" {
		sb.WriteString(desc)
		sb.WriteString("\n")
	}
	for _, item := range feed.Items[:maxItems] {
		body := item.Content
		if body == "" {
			body = item.Description
		}
		if t := strings.TrimSpace(item.Title); t != "" {
			sb.WriteString(t)
			sb.WriteString("\n")
		}
		if text := stripHTML(body); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	return podcast.SourceText{
		Title:   strings.TrimSpace(feed.Title),
		Content: strings.TrimSpace(sb.String()),
	}
}

// stripHTML 剥离 HTML 标签并解码实体，只保留纯文本。
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpaces(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpaces(s)
	}
	return collapseSpaces(doc.Text())
}

// normalizeText 合并每行内的连续空白，并去掉空行。
func normalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = collapseSpaces(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
