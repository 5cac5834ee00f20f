package types

import "time"

// QuotaWindow 消息额度的滚动统计窗口
const QuotaWindow = 24 * time.Hour

// QuotaTiers 各套餐在滚动窗口内允许发送的消息条数
type QuotaTiers struct {
	Guest   int64 `toml:"guest"`
	Regular int64 `toml:"regular"`
	Pro     int64 `toml:"pro"`
}

func DefaultQuotaTiers() QuotaTiers {
	return QuotaTiers{
		Guest:   20,
		Regular: 100,
		Pro:     1000,
	}
}

func (q QuotaTiers) Entitlement(plan UserPlan) int64 {
	switch plan {
	case USER_PLAN_PRO:
		return q.Pro
	case USER_PLAN_REGULAR:
		return q.Regular
	default:
		return q.Guest
	}
}
