package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
)

func TestTraceKeepsCode(t *testing.T) {
	base := errors.New("store.GetChat", "error.notfound", fmt.Errorf("no rows")).Code(http.StatusNotFound)
	traced := errors.Trace("logic.ResumeChatStream", base)

	assert.Equal(t, http.StatusNotFound, traced.GetCode())
	assert.Equal(t, "error.notfound", traced.Message())
}

func TestTraceWrapsPlainError(t *testing.T) {
	traced := errors.Trace("logic.DeleteChat", fmt.Errorf("boom"))

	assert.Equal(t, "boom", traced.Message())
	assert.Contains(t, traced.Error(), "logic.DeleteChat")
}

func TestMessageFallsBackToCause(t *testing.T) {
	err := errors.New("handler.CreateChat", "", fmt.Errorf("cause detail"))
	assert.Equal(t, "cause detail", err.Message())
}
