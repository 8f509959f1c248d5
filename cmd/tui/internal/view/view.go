package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DataChangedMsg is sent when the local data was replaced from outside the
// current view, e.g. by another process or a cloud pull.
type DataChangedMsg struct{}

// SyncStatusMsg carries a sync status change.
type SyncStatusMsg struct {
	Status cloudsync.Status
}
