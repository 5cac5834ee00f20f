package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaEntitlement(t *testing.T) {
	tiers := DefaultQuotaTiers()

	assert.Equal(t, tiers.Guest, tiers.Entitlement(USER_PLAN_GUEST))
	assert.Equal(t, tiers.Regular, tiers.Entitlement(USER_PLAN_REGULAR))
	assert.Equal(t, tiers.Pro, tiers.Entitlement(USER_PLAN_PRO))
	// 未知套餐按最低档处理
	assert.Equal(t, tiers.Guest, tiers.Entitlement(UserPlan("vip")))
}
