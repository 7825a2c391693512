package tui

import (
	"github.com/mark3labs/deckfill/internal/template"
)

// Page results.
type (
	templatesLoadedMsg struct {
		templates []template.Template
		err       error
	}
	trashLoadedMsg struct {
		templates []template.Template
		err       error
	}
	templateFetchedMsg struct {
		tpl template.Template
		err error
	}
	renamedMsg struct {
		tpl template.Template
		err error
	}
	deletedMsg struct {
		tpl template.Template
		err error
	}
	restoredMsg struct {
		tpl template.Template
		err error
	}
	hooksDoneMsg struct {
		output string
		err    error
	}
)

// Requests from pages to the app.
type (
	useTemplateMsg    struct{ tpl template.Template }
	uploadRequestMsg  struct{}
	deleteRequestMsg  struct{ tpl template.Template }
	navigateMsg       struct{ to string }
	quitRequestMsg    struct{}
	detailsToggledMsg struct{ visible bool }
)
