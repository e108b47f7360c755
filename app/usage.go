// Package app enforces monthly analysis limits for authenticated users.
package app

import (
	"time"

	"github.com/marvinrgb/argue-well-api/app/models"
)

const FreeMonthlyLimit = 5

const quotaExceededMessage = "You have exceeded your monthly analysis limit of 5 analyses. Please upgrade to Pro for unlimited analyses."

type quotaError struct {
	Limit int
	Used  int
}

func (e quotaError) Error() string {
	return "monthly quota exceeded"
}

// rolloverCount returns the effective analysis count at now. When now falls
// in a strictly later calendar month (UTC) than the last analysis, the count
// resets to zero. The reset is provisional: it is persisted together with
// the increment after a successful analysis, never on its own.
func rolloverCount(count int, last *time.Time, now time.Time) int {
	if last == nil {
		return count
	}
	lastYear, lastMonth, _ := last.UTC().Date()
	nowYear, nowMonth, _ := now.UTC().Date()
	if nowYear > lastYear || (nowYear == lastYear && nowMonth > lastMonth) {
		return 0
	}
	return count
}

// checkAnalysisQuota applies month rollover and decides whether the user may
// run another analysis. Pro users are never limited. The returned count is
// the post-rollover value the caller should increment and persist on
// success.
//
// The check here and the increment after the upstream call are two separate
// store round trips with no transaction between them. Concurrent requests
// from one free user can both pass before either increments; that race is
// accepted, not guarded.
func checkAnalysisQuota(user models.User, now time.Time) (int, error) {
	count := rolloverCount(user.MonthlyAnalysisCount, user.LastAnalysisDate, now)
	if user.SubscriptionTier == models.TierFree && count >= FreeMonthlyLimit {
		return count, quotaError{Limit: FreeMonthlyLimit, Used: count}
	}
	return count, nil
}
