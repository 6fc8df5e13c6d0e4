package textnorm

import "strings"

// Common Chinese function words plus a small English set. Terms are matched
// after lowercasing, so the English entries are lowercase only.
const stopwordList = `一个 我们 你们 他们 她们 这个 那个 什么 怎么 为什么 因为 所以 但是 可是
不过 而且 然后 如果 虽然 就是 还是 或者 以及 对于 关于 这样 那样 这些 那些 自己 大家 没有 不是
可以 已经 现在 时候 知道 觉得 感觉 应该 真的 非常 十分 特别 有点 一下 一些 一直 一样 起来 出来
下来 上去 不会 不能 不要 很多 多少 怎样 如何 哪里 这里 那里 还有 只有 只是 都是 也是 就要 转发
微博 回复 评论 点赞 分享 视频 图片 链接 网页 全文 展开 收起 哈哈 哈哈哈 嘻嘻 呵呵 啊啊
the and for are was were this that with from have has had not you your his her its our their will
would can could should been being them they what when where which who whom why how all any both each`

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	set := make(map[string]struct{})

	for _, word := range strings.Fields(stopwordList) {
		set[word] = struct{}{}
	}

	return set
}
