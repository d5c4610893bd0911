package utils

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MembershipCache memoizes positive member-guard lookups; entries are dropped
// on leave/kick/delete so removals take effect immediately.
var MembershipCache = cache.New(time.Minute*5, time.Second*30)

func MembershipCacheKey(kind string, userID uint, hangoutID string) string {
	return fmt.Sprintf("membership:%s:%v:%s", kind, userID, hangoutID)
}
