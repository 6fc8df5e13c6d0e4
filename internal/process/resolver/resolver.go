// Package resolver assigns incoming posts to topics. Resolution runs an
// ordered list of matching strategies over a pre-fetched snapshot of active
// topics; the first strategy that yields a match wins, and ties within a
// strategy go to the earliest-created topic.
package resolver

import (
	"regexp"
	"strings"

	"github.com/3190735983/weibo-sentiment-platform/internal/core/domain"
)

var hashtagPattern = regexp.MustCompile(`#([^#]+)#`)

type strategy func(content, sourceKeyword string, topics []domain.Topic) *domain.Topic

// Resolver picks the owning topic for a piece of content.
type Resolver struct {
	strategies []strategy
}

// New returns a resolver with the standard strategy chain: hashtag equal to
// a topic name or contained in its tag, source keyword equal to a name or
// contained in a tag, mutual containment between source keyword and name,
// topic name in content, then first-topic fallback.
func New() *Resolver {
	return &Resolver{
		strategies: []strategy{
			matchHashtag,
			matchKeywordNameOrTag,
			matchKeywordContainment,
			matchNameInContent,
			fallbackFirst,
		},
	}
}

// Resolve returns the matched topic, or nil when the snapshot is empty. The
// topics slice must be in creation order; Resolve never mutates it.
func (r *Resolver) Resolve(content, sourceKeyword string, topics []domain.Topic) *domain.Topic {
	if len(topics) == 0 {
		return nil
	}

	for _, match := range r.strategies {
		if topic := match(content, sourceKeyword, topics); topic != nil {
			return topic
		}
	}

	return nil
}

// matchHashtag matches `#tag#` occurrences in the content: the inner text
// must equal a topic's name or be contained in its tag.
func matchHashtag(content, _ string, topics []domain.Topic) *domain.Topic {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	for _, m := range matches {
		inner := strings.TrimSpace(m[1])
		if inner == "" {
			continue
		}

		for i := range topics {
			if topics[i].Name == inner || strings.Contains(topics[i].Tag, inner) {
				return &topics[i]
			}
		}
	}

	return nil
}

// matchKeywordNameOrTag matches when the crawl keyword equals a topic's name
// or is contained in its tag.
func matchKeywordNameOrTag(_, sourceKeyword string, topics []domain.Topic) *domain.Topic {
	keyword := strings.TrimSpace(sourceKeyword)
	if keyword == "" {
		return nil
	}

	for i := range topics {
		if topics[i].Name == keyword || strings.Contains(topics[i].Tag, keyword) {
			return &topics[i]
		}
	}

	return nil
}

// matchKeywordContainment matches on mutual containment between the crawl
// keyword and a topic name, catching truncated or extended keyword variants.
func matchKeywordContainment(_, sourceKeyword string, topics []domain.Topic) *domain.Topic {
	keyword := strings.TrimSpace(sourceKeyword)
	if keyword == "" {
		return nil
	}

	for i := range topics {
		name := topics[i].Name
		if name == "" {
			continue
		}

		if strings.Contains(name, keyword) || strings.Contains(keyword, name) {
			return &topics[i]
		}
	}

	return nil
}

func matchNameInContent(content, _ string, topics []domain.Topic) *domain.Topic {
	if content == "" {
		return nil
	}

	for i := range topics {
		if topics[i].Name != "" && strings.Contains(content, topics[i].Name) {
			return &topics[i]
		}
	}

	return nil
}

func fallbackFirst(_, _ string, topics []domain.Topic) *domain.Topic {
	return &topics[0]
}
