package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	braceBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON 从模型回复中尽力解析出 JSON 对象
//
// 依次尝试：整段解析 → ```json 代码块 → 第一个 { 到最后一个 } 之间的内容。
// 全部失败时返回空 map（非 nil）。
func ExtractJSON(text string) map[string]any {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}
	}

	if obj, ok := parseObject(text); ok {
		return obj
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj
		}
	}

	if block := braceBlockPattern.FindString(text); block != "" {
		if obj, ok := parseObject(block); ok {
			return obj
		}
	}

	return map[string]any{}
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
