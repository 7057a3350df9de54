package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		want string
		mode Mode
	}{
		{"normal", ModeNormal},
		{"search", ModeSearch},
		{"confirm", ModeConfirm},
		{"input_title", ModeInputTitle},
		{"help", ModeHelp},
		{"detail", ModeDetail},
		{"input_user", ModeInputUser},
		{"unknown", Mode(99)},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestMode_IsInputMode(t *testing.T) {
	assert.True(t, ModeSearch.IsInputMode())
	assert.True(t, ModeInputTitle.IsInputMode())
	assert.True(t, ModeInputUser.IsInputMode())
	assert.False(t, ModeNormal.IsInputMode())
	assert.False(t, ModeConfirm.IsInputMode())
	assert.False(t, ModeDetail.IsInputMode())
}

func TestConfirmAction_String(t *testing.T) {
	assert.Empty(t, ConfirmNone.String())
	assert.Equal(t, "delete", ConfirmDelete.String())
	assert.Equal(t, "clear completed", ConfirmClear.String())
}

func TestKeyMap_Help(t *testing.T) {
	keys := DefaultKeyMap()
	assert.NotEmpty(t, keys.ShortHelp())
	for _, group := range keys.FullHelp() {
		assert.NotEmpty(t, group)
	}
}
