package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

func testTopics() []domain.Topic {
	return []domain.Topic{
		{ID: 1, Name: "开心一下", Tag: "#开心一下#", IsActive: true},
		{ID: 2, Name: "世界杯决赛", Tag: "#世界杯决赛#", IsActive: true},
	}
}

func TestResolveEmptySnapshot(t *testing.T) {
	assert.Nil(t, New().Resolve("任何内容", "关键词", nil))
}

func TestResolveHashtagEqualsName(t *testing.T) {
	topic := New().Resolve("看比赛啦#世界杯决赛#冲冲冲", "", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveHashtagContainedInTag(t *testing.T) {
	// "#世界杯#" is not a topic name, but the text sits inside the tag
	// "#世界杯决赛#".
	topic := New().Resolve("今晚看#世界杯#", "", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveHashtagBeatsSourceKeyword(t *testing.T) {
	// Hashtag strategy runs first even when the source keyword names
	// a different topic.
	topic := New().Resolve("#世界杯决赛#精彩", "开心一下", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveKeywordEqualsName(t *testing.T) {
	topic := New().Resolve("没有话题标签的内容", "世界杯决赛", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveKeywordContainedInTag(t *testing.T) {
	// Truncated crawl keyword: not equal to any name, but a substring of
	// the tag "#世界杯决赛#".
	topic := New().Resolve("无关内容", "世界杯决", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveKeywordContainedInName(t *testing.T) {
	topic := New().Resolve("无关内容", "世界杯", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveNameContainedInKeyword(t *testing.T) {
	// Extended crawl keyword: contains the full topic name, so mutual
	// containment picks the topic even though tag matching fails.
	topic := New().Resolve("无关内容", "世界杯决赛冠军", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveNameInContent(t *testing.T) {
	topic := New().Resolve("今天世界杯决赛太精彩了", "", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 2, topic.ID)
}

func TestResolveFallbackFirstTopic(t *testing.T) {
	// No hashtag, no keyword, no name in content: the earliest topic wins.
	topic := New().Resolve("完全无关的内容xyz", "", testTopics())

	require.NotNil(t, topic)
	assert.EqualValues(t, 1, topic.ID)
}

func TestResolvePartialNameFallsThrough(t *testing.T) {
	// A fragment of a topic name in the content is not a match for any
	// strategy; the fallback applies.
	topic := New().Resolve("新款汽车发布了", "", append(testTopics(),
		domain.Topic{ID: 3, Name: "新能源 汽车", Tag: "#新能源汽车#"}))

	require.NotNil(t, topic)
	assert.EqualValues(t, 1, topic.ID)
}

func TestResolveTieBreakEarliestTopic(t *testing.T) {
	topics := []domain.Topic{
		{ID: 10, Name: "美食", Tag: "#美食#"},
		{ID: 11, Name: "美食推荐", Tag: "#美食推荐#"},
	}

	// Both names appear in the content; the earlier topic wins.
	topic := New().Resolve("美食推荐来了，都是美食", "", topics)

	require.NotNil(t, topic)
	assert.EqualValues(t, 10, topic.ID)
}
