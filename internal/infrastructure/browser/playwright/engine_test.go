package playwright

import (
	"errors"
	"testing"

	"browser-mcp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Config{})
	assert.Equal(t, "firefox", e.Name())
	assert.Equal(t, DefaultConfig().Timeout, e.cfg.Timeout)
}

func TestLocator_ClassifiesStrictModeViolation(t *testing.T) {
	l := &locator{sel: entity.CSS("button")}

	err := l.classify(errors.New(`locator.click: Error: strict mode violation: Locator("button") resolved to 3 elements`))
	assert.ErrorIs(t, err, entity.ErrStrictModeViolation)
	assert.Contains(t, err.Error(), "resolved to 3 elements")

	err = l.classify(errors.New("Timeout 10000ms exceeded."))
	assert.False(t, errors.Is(err, entity.ErrStrictModeViolation))

	assert.NoError(t, l.classify(nil))
}
