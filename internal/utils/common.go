package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// MinDuration 返回两个时间间隔中较小的一个，非正数视为未设置
func MinDuration(a, b time.Duration) time.Duration {
	if a <= 0 {
		return b
	}
	if b <= 0 || a < b {
		return a
	}
	return b
}

// RemoveControlCharacters 移除控制字符，保留换行符和制表符
func RemoveControlCharacters(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, text)
}

// CleanText 去掉控制字符并把连续空白压缩为单个空格
func CleanText(text string) string {
	text = RemoveControlCharacters(text)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// CapitalizeSentence 首字母大写，其余小写
func CapitalizeSentence(text string) string {
	if text == "" {
		return text
	}
	first, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(first)) + strings.ToLower(text[size:])
}

// TruncateRunes 超过 limit 个字符时截断为 limit-len(suffix) 个字符并追加 suffix
func TruncateRunes(text string, limit int, suffix string) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + suffix
}

// HashKey 生成稳定的缓存键
func HashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
