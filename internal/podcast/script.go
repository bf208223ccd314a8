// Package podcast 实现原文到双人播客音频的核心流程：
// 脚本生成（Generator）、按位置交替分配音色并拼接音频（Assembler）。
package podcast

import (
	"regexp"
	"strings"
)

// SourceText 是从文档中提取出的原始文本，生成后不再修改。
type SourceText struct {
	Origin  string // 原文 URL
	Title   string
	Content string
}

// Line 是脚本中的一句台词。说话人由 Position 的奇偶决定，文本中不含说话人标签。
type Line struct {
	Position int
	Text     string
}

// Script 是按顺序排列的台词序列。
type Script []Line

// NewScript 由台词文本构造脚本，位置从 0 开始依次编号。
// 调用方需保证文本已经规整（非空、无首尾空白）。
func NewScript(texts ...string) Script {
	script := make(Script, len(texts))
	for i, text := range texts {
		script[i] = Line{Position: i, Text: text}
	}
	return script
}

// Texts 返回所有台词文本。
func (s Script) Texts() []string {
	texts := make([]string, len(s))
	for i, line := range s {
		texts[i] = line.Text
	}
	return texts
}

// String 以换行分隔输出全部台词，与模型原始输出格式一致。
func (s Script) String() string {
	return strings.Join(s.Texts(), "\n")
}

// speakerLabelRe 匹配行首的说话人标签，如 "Host 1:"、"**Speaker B:**"、"主持人2："。
var speakerLabelRe = regexp.MustCompile(`^[*_#>\-\s]*(?i:host|speaker|narrator|主持人|嘉宾)\s*(?:[0-9]+|[A-Z])?\s*[*_]*\s*[:：]\s*[*_]*\s*`)

// ParseScript 将模型的原始输出规整为脚本：
// 按行切分，去除首尾空白和行首说话人标签，丢弃空行。
func ParseScript(raw string) Script {
	rows := strings.Split(raw, "\n")
	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		text := strings.TrimSpace(row)
		text = strings.TrimSpace(speakerLabelRe.ReplaceAllString(text, ""))
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return NewScript(texts...)
}

// Voices 是两位主持人的固定音色：A 用于偶数位台词，B 用于奇数位。
type Voices struct {
	A string
	B string
}

// For 返回指定位置台词的音色，只取决于位置的奇偶。
func (v Voices) For(position int) string {
	if position%2 == 0 {
		return v.A
	}
	return v.B
}
