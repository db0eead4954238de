package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlerErrorMessage(t *testing.T) {
	err := NewTimeout("patentgo", "info table not visible", errors.New("deadline"))
	assert.Equal(t, "[timeout] patentgo: info table not visible - deadline", err.Error())

	err = NewValidation("cli", "customer number must be 12 digits")
	assert.Equal(t, "[validation] cli: customer number must be 12 digits", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(NewNetwork("kipris", "goto", nil)))
	assert.True(t, IsRetryable(NewStructure("patentgo", "no table", nil)))
	assert.False(t, IsRetryable(NewValidation("cli", "bad")))
	assert.False(t, IsRetryable(fmt.Errorf("wrapped: %w", NewConfiguration("bad", nil))))
}

func TestIsType(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("outer: %w", NewBrowser("kipris", "launch", inner))

	assert.True(t, IsType(err, ErrorTypeBrowser))
	assert.False(t, IsType(err, ErrorTypeNetwork))
	assert.ErrorIs(t, err, inner)
}
