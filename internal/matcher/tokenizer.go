// Package matcher 实现失物招领的候选匹配算法：分词、TF-IDF 检索、
// 大模型重排（带规则兜底）以及结构化信息抽取。
//
// 本包只依赖 model 与 llm 网关，不访问数据库，所有函数均可并发调用。
package matcher

import (
	"strings"
	"unicode"
)

// bigramThreshold 超过该长度（字符数）的连续片段拆成重叠二元组
const bigramThreshold = 4

// stopWords 高频虚词，分词后剔除
var stopWords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "在": {}, "我": {}, "有": {}, "和": {}, "就": {},
	"不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {}, "也": {}, "很": {},
	"到": {}, "说": {}, "要": {}, "去": {}, "你": {}, "会": {}, "着": {}, "没有": {},
	"看": {}, "好": {}, "自己": {}, "这": {}, "那": {}, "他": {}, "她": {},
}

// IsStopWord 判断是否为停用词
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// Tokenize 将文本切分为索引词
//
// 字母、数字、下划线以外的字符（包括组合附加符号）替换为空格后按空白切分；不超过 4 个字符的片段整体作为一个词，
// 更长的片段拆成 len-1 个重叠的二字窗口。不做大小写归一。
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return ' '
	}, text)

	var terms []string
	for _, field := range strings.Fields(cleaned) {
		runes := []rune(field)
		if len(runes) <= bigramThreshold {
			if !IsStopWord(field) {
				terms = append(terms, field)
			}
			continue
		}
		for i := 0; i < len(runes)-1; i++ {
			bigram := string(runes[i : i+2])
			if !IsStopWord(bigram) {
				terms = append(terms, bigram)
			}
		}
	}
	return terms
}
