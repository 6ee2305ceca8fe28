package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_ShortRunsKeptWhole(t *testing.T) {
	assert.Equal(t, []string{"钱包", "钥匙", "iPad"}, Tokenize("钱包，钥匙！ iPad"))
	assert.Equal(t, []string{"黑色钱包"}, Tokenize("黑色钱包"))
}

func TestTokenize_LongRunsBecomeBigrams(t *testing.T) {
	assert.Equal(t, []string{"ab", "bc", "cd", "de", "ef"}, Tokenize("abcdef"))
	assert.Equal(t, []string{"黑色", "色钱", "钱包", "包x"}, Tokenize("黑色钱包x"))
}

func TestTokenize_BigramCountIsLenMinusOne(t *testing.T) {
	for _, s := range []string{"图书馆三楼自习室", "blackwallet", "华为手机充电器"} {
		n := len([]rune(s))
		assert.Len(t, Tokenize(s), n-1, s)
	}
}

func TestTokenize_StopWordsRemoved(t *testing.T) {
	terms := Tokenize("我 的 钱包 没有 了 自己的钱包丢了")
	for _, term := range terms {
		assert.NotEmpty(t, term)
		assert.False(t, IsStopWord(term), "停用词未剔除: %s", term)
	}
	// "自己的钱包丢了" 拆成 6 个二字窗口，其中 "自己" 为停用词
	assert.Equal(t, []string{"钱包", "己的", "的钱", "钱包", "包丢", "丢了"}, terms)
}

func TestTokenize_KeepsCaseAndUnderscore(t *testing.T) {
	assert.Equal(t, []string{"Pro", "iOS", "a_b"}, Tokenize("Pro, iOS; a_b"))
}

func TestTokenize_EmptyAndPunctuationOnly(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("，。！？ ... ---"))
}

func TestTokenize_CombiningMarksSplitWords(t *testing.T) {
	// U+0301 组合重音符不属于单词字符
	assert.Equal(t, []string{"cafe", "x"}, Tokenize("cafe\u0301x"))
	assert.Equal(t, []string{"na", "o"}, Tokenize("na\u0303o"))
}
