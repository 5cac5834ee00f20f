package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenUniqIDStr(t *testing.T) {
	SetupIDWorker(1)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenUniqIDStr()
		assert.NotEmpty(t, id)
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenRandomID(t *testing.T) {
	assert.Len(t, GenRandomID(), 32)
}
