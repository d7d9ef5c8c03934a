package common

import "fmt"

// RedisKeyPublicChallengesVersion holds a counter bumped whenever the public
// challenge list changes. Cached pages are keyed by it, so a page computed
// before a change is never served after it.
const RedisKeyPublicChallengesVersion = "publicchallenges:version"

const RedisPatternPublicChallenges = "publicchallenges:page:*"

func RedisKeyPublicChallenges(version int64, offset, limit int) string {
	return fmt.Sprintf("publicchallenges:page:%d:%d:%d", version, offset, limit)
}
