package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text unchanged", input: "今天天气不错", want: "今天天气不错"},
		{name: "strips urls", input: "看这个 https://t.cn/abc123 很有意思", want: "看这个 很有意思"},
		{name: "strips www urls", input: "www.weibo.com 首页", want: "首页"},
		{name: "strips mentions", input: "@小明 说得对", want: "说得对"},
		{name: "strips symbols keeps hashtag text", input: "#开心一下#今天真好！！", want: "开心一下 今天真好"},
		{name: "folds full width", input: "ＡＢＣ１２３", want: "ABC123"},
		{name: "collapses whitespace", input: "a   b\t\nc", want: "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "han bigrams", input: "今天天气", want: []string{"今天", "天天", "天气"}},
		{name: "single han rune passes through", input: "好", want: []string{"好"}},
		{name: "latin run lowercased", input: "iPhone", want: []string{"iphone"}},
		{name: "mixed han and latin", input: "买了iPhone手机", want: []string{"买了", "iphone", "手机"}},
		{name: "digits kept as run", input: "2024年", want: []string{"2024", "年"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.input))
		})
	}
}

func TestTerms(t *testing.T) {
	terms := Terms("今天天气不错！@朋友 https://t.cn/x 12345")

	require.NotEmpty(t, terms)

	for _, term := range terms {
		assert.True(t, Keep(term), "term %q should survive its own filter", term)
		assert.NotEqual(t, "12345", term, "pure numbers must be dropped")
	}
}

func TestTermsEmptyInput(t *testing.T) {
	assert.Nil(t, Terms(""))
	assert.Nil(t, Terms("！！！？？？"))
}

func TestKeep(t *testing.T) {
	assert.False(t, Keep("好"), "single rune dropped")
	assert.False(t, Keep("12345"), "pure number dropped")
	assert.False(t, Keep("我们"), "stopword dropped")
	assert.True(t, Keep("天气"))
	assert.True(t, Keep("iphone"))
}
