package service

import (
	"context"
	"errors"
	"testing"

	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/logger"
	"browser-mcp/internal/testutil/fakebrowser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorResolver_SingleMatch(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Matches["#go"] = 1
	r := NewSelectorResolver(0, logger.NewNop())

	msg, err := r.ResolveAndAct(context.Background(), page, entity.CSS("#go"), entity.Action{Kind: entity.ActionClick})
	require.NoError(t, err)

	assert.Equal(t, "Clicked: #go", msg)
	assert.Equal(t, []string{"click css=#go"}, page.Actions())
}

func TestSelectorResolver_AmbiguousRetriesOnFirst(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Matches["button"] = 3
	r := NewSelectorResolver(0, logger.NewNop())

	msg, err := r.ResolveAndAct(context.Background(), page, entity.CSS("button"), entity.Action{Kind: entity.ActionClick})
	require.NoError(t, err)

	assert.Equal(t, "Clicked: button", msg)
	assert.Equal(t, []string{"click css=button first"}, page.Actions())
}

func TestSelectorResolver_NoMatchIsSingleAttempt(t *testing.T) {
	page := fakebrowser.NewPage()
	r := NewSelectorResolver(0, logger.NewNop())

	_, err := r.ResolveAndAct(context.Background(), page, entity.CSS("#missing"), entity.Action{Kind: entity.ActionClick})
	require.Error(t, err)

	var resErr *entity.ElementResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, 1, resErr.Attempts)
	assert.ErrorIs(t, err, fakebrowser.ErrNoMatch)
	assert.Contains(t, err.Error(), "Failed to click #missing: ")
	assert.Empty(t, page.Actions())
}

func TestSelectorResolver_RetryFailureSaysTwice(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Matches["Submit"] = 2
	page.FirstErr["Submit"] = errors.New("element is detached")
	r := NewSelectorResolver(0, logger.NewNop())

	_, err := r.ResolveAndAct(context.Background(), page, entity.Text("Submit"), entity.Action{Kind: entity.ActionHover})
	require.Error(t, err)

	assert.Equal(t, "Failed (twice) to hover element with text Submit: element is detached", err.Error())
	assert.ErrorIs(t, err, entity.ErrElementResolution)
}

func TestSelectorResolver_Descriptions(t *testing.T) {
	tests := []struct {
		sel    entity.Selector
		action entity.Action
		want   string
	}{
		{entity.Text("Sign in"), entity.Action{Kind: entity.ActionClick}, "Clicked element with text: Sign in"},
		{entity.CSS("#q"), entity.Action{Kind: entity.ActionFill, Value: "golang"}, "Filled #q with: golang"},
		{entity.CSS("#c"), entity.Action{Kind: entity.ActionSelect, Value: "g"}, "Selected #c with: g"},
		{entity.Text("Colour"), entity.Action{Kind: entity.ActionSelect, Value: "g"}, "Selected element with text Colour with value: g"},
		{entity.CSS(".menu"), entity.Action{Kind: entity.ActionHover}, "Hovered .menu"},
		{entity.Text("Menu"), entity.Action{Kind: entity.ActionHover}, "Hovered element with text: Menu"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			page := fakebrowser.NewPage()
			page.Matches[tt.sel.Expression] = 1
			r := NewSelectorResolver(0, logger.NewNop())

			msg, err := r.ResolveAndAct(context.Background(), page, tt.sel, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestSelectorResolver_FillPassesValue(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Matches["input"] = 2
	r := NewSelectorResolver(0, logger.NewNop())

	_, err := r.ResolveAndAct(context.Background(), page, entity.CSS("input"), entity.Action{Kind: entity.ActionFill, Value: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"type css=input first abc"}, page.Actions())
}
