package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotice_ShowAndExpire(t *testing.T) {
	var n notice
	assert.False(t, n.Visible())
	assert.Empty(t, n.view(80))

	require.NotNil(t, n.show(noticeMsg{text: "Template saved"}))
	assert.True(t, n.Visible())
	assert.Contains(t, n.view(80), "Template saved")

	n.expire(noticeExpiredMsg{gen: n.gen})
	assert.False(t, n.Visible())
}

func TestNotice_StaleExpiryKeepsNewer(t *testing.T) {
	var n notice
	n.show(noticeMsg{text: "first"})
	stale := noticeExpiredMsg{gen: n.gen}
	n.show(noticeMsg{text: "second"})

	n.expire(stale)
	assert.Equal(t, "second", n.Text())
}

func TestNotice_WrapsToWidth(t *testing.T) {
	var n notice
	n.show(noticeMsg{text: "a notice far too long for a narrow terminal"})
	assert.Contains(t, n.view(20), "\n")
}

func TestNotifyErr(t *testing.T) {
	msg := notifyErr(errors.New("boom"))()
	require.IsType(t, noticeMsg{}, msg)
	assert.True(t, msg.(noticeMsg).isErr)
	assert.NotEmpty(t, msg.(noticeMsg).text)
}
