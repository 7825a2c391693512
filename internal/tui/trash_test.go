package tui

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trashed opens the trash page holding one deleted template.
func trashed(t *testing.T) (*appHarness, template.Template) {
	t.Helper()
	h := newAppHarness(t, Options{})
	tpl := h.addTemplate("Quarterly Review")
	require.NoError(t, h.backend.Client.DeleteTemplate(context.Background(), tpl.ID))
	h.deliver(t, h.app.navigate("/trash"))
	require.Len(t, h.app.trash.Items(), 1)
	return h, tpl
}

func TestTrash_RestorePurgedTemplate(t *testing.T) {
	h, tpl := trashed(t)
	h.backend.Mock.Purge(tpl.ID)

	notice := h.deliver(t, h.press("enter"))
	assert.Empty(t, h.app.trash.Items(), "purged templates leave the list")

	h.app.Update(testfixtures.Exec(t, notice))
	assert.Contains(t, h.app.notice.Text(), "permanently deleted")
}

func TestTrash_EmptyAndReload(t *testing.T) {
	h, _ := trashed(t)

	h.deliver(t, h.press("r"))
	assert.Empty(t, h.app.trash.Items())
	assert.Contains(t, h.app.trash.View(), "Trash is empty.")

	h.deliver(t, h.press("ctrl+r"))
	assert.Empty(t, h.app.trash.Items())
}

func TestTrash_BackToDashboard(t *testing.T) {
	h, _ := trashed(t)

	h.deliver(t, h.deliver(t, h.press("b")))
	assert.Equal(t, "/", h.app.Page())
	assert.Empty(t, h.app.dashboard.Templates())
}

func TestDaysLeft(t *testing.T) {
	deleted := testfixtures.FixedTime
	tpl := template.Template{DeletedAt: &deleted}

	assert.Equal(t, 30, daysLeft(tpl, deleted))
	assert.Equal(t, 25, daysLeft(tpl, deleted.Add(5*24*time.Hour)))
	assert.Equal(t, 1, daysLeft(tpl, deleted.Add(api.TrashRetention-time.Hour)))
	assert.Equal(t, 0, daysLeft(tpl, deleted.Add(api.TrashRetention+time.Hour)))
	assert.Equal(t, 0, daysLeft(template.Template{}, deleted))
}
