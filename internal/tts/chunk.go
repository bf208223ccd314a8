package tts

import (
	"strings"
	"unicode/utf8"
)

// extractSentence 从文本中提取第一个完整句子。
// 返回句子、剩余文本，以及是否找到句末标点。
func extractSentence(text string) (string, string, bool) {
	sentenceEnders := []rune{'。', '！', '？', '；', '.', '!', '?', '\n'}
	for i, r := range text {
		for _, ender := range sentenceEnders {
			if r == ender {
				splitAt := i + utf8.RuneLen(r)
				return text[:splitAt], text[splitAt:], true
			}
		}
	}
	return "", text, false
}

// mergeSentences 将文本按句分割后合并为大段，每段不超过 maxChars 个字符。
// 单句超过 maxChars 时按字符硬切。
func mergeSentences(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 150
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	remaining := text

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	appendPiece := func(piece string) {
		for _, part := range splitLong(piece, maxChars) {
			partLen := utf8.RuneCountInString(part)
			sep := separator(current.String(), part)
			if currentLen > 0 && currentLen+len(sep)+partLen > maxChars {
				flush()
				sep = ""
			}
			current.WriteString(sep)
			current.WriteString(part)
			currentLen += len(sep) + partLen
		}
	}

	for {
		sentence, rest, found := extractSentence(remaining)
		if !found {
			if r := strings.TrimSpace(remaining); r != "" {
				appendPiece(r)
			}
			break
		}
		remaining = rest
		if sentence = strings.TrimSpace(sentence); sentence != "" {
			appendPiece(sentence)
		}
	}
	flush()
	return chunks
}

// splitLong 按 maxChars 个字符切分超长句子。
func splitLong(s string, maxChars int) []string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return []string{s}
	}
	var parts []string
	for len(runes) > 0 {
		n := maxChars
		if n > len(runes) {
			n = len(runes)
		}
		parts = append(parts, strings.TrimSpace(string(runes[:n])))
		runes = runes[n:]
	}
	return parts
}

// separator 英文句子之间补一个空格，中文直接相连。
func separator(current, next string) string {
	if current == "" {
		return ""
	}
	last, _ := utf8.DecodeLastRuneInString(current)
	first, _ := utf8.DecodeRuneInString(next)
	if last < utf8.RuneSelf && first < utf8.RuneSelf {
		return " "
	}
	return ""
}
