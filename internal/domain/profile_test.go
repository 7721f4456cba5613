package domain_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rippleeffect/charity-service/internal/domain"
)

func TestUserProfileBalanceKey(t *testing.T) {
	p := domain.NewUserProfile("u1")
	p.Balances["Red Cross"] = domain.Balance{Destination: "acct_123", Amount: decimal.RequireFromString("1.00")}

	key, ok := p.BalanceKey("Red Cross")
	assert.True(t, ok)
	assert.Equal(t, "Red Cross", key)

	key, ok = p.BalanceKey("red  cross")
	assert.True(t, ok)
	assert.Equal(t, "Red Cross", key)

	_, ok = p.BalanceKey("UNICEF")
	assert.False(t, ok)
}

func TestUserProfileCloneIsDeep(t *testing.T) {
	p := domain.NewUserProfile("u1")
	p.Interests = append(p.Interests, "UNICEF")
	p.Balances["UNICEF"] = domain.Balance{Amount: decimal.NewFromInt(1)}

	c := p.Clone()
	c.Interests[0] = "changed"
	c.Balances["UNICEF"] = domain.Balance{Amount: decimal.NewFromInt(5)}

	assert.Equal(t, "UNICEF", p.Interests[0])
	assert.True(t, decimal.NewFromInt(1).Equal(p.Balances["UNICEF"].Amount))
}

func TestUserProfileCompletedSessionsBounded(t *testing.T) {
	p := domain.NewUserProfile("u1")
	for i := 0; i < 60; i++ {
		p.MarkSessionCompleted(fmt.Sprintf("cs_%d", i))
	}
	assert.Len(t, p.CompletedSessions, 50)
	assert.False(t, p.SessionCompleted("cs_0"))
	assert.True(t, p.SessionCompleted("cs_59"))
}
