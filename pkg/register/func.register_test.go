package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testKey struct{}

func TestResolveFuncHandlers(t *testing.T) {
	total := 0
	RegisterFunc[*int](testKey{}, func(n *int) { *n += 1 })
	RegisterFunc[*int](testKey{}, func(n *int) { *n += 2 })
	// 同一 key 下类型不匹配的登记项不应被取出
	RegisterFunc[string](testKey{}, func(string) {})

	matched := ResolveFuncHandlers[*int](testKey{})
	assert.Len(t, matched, 2)
	for _, h := range matched {
		h(&total)
	}
	assert.Equal(t, 3, total)
}
