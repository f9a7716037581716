// Package events holds the messages views use to talk to the app shell.
package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// OpenJournalMsg asks the shell to show the journal with ID.
type OpenJournalMsg struct {
	ID string
}

// Describe renders the message for logs.
func (m OpenJournalMsg) Describe() string {
	return fmt.Sprintf(`open id:%q`, m.ID)
}

// ShowListMsg asks the shell to return to the journal list.
type ShowListMsg struct{}

// ShowCreateMsg asks the shell to show the creation form.
type ShowCreateMsg struct{}

// ChangedMsg announces that chain state changed outside the view that is
// showing it. An empty ObjectID means anything may have changed.
type ChangedMsg struct {
	ObjectID string
}

// Describe renders the message for logs.
func (m ChangedMsg) Describe() string {
	if m.ObjectID == "" {
		return "changed: all"
	}
	return fmt.Sprintf(`changed id:%q`, m.ObjectID)
}

// Affects reports whether a view showing id should refetch.
func (m ChangedMsg) Affects(id string) bool {
	return m.ObjectID == "" || m.ObjectID == id
}

// OpenJournalCmd wraps OpenJournalMsg into a tea.Cmd.
func OpenJournalCmd(id string) tea.Cmd {
	return func() tea.Msg { return OpenJournalMsg{ID: id} }
}

// ShowListCmd wraps ShowListMsg into a tea.Cmd.
func ShowListCmd() tea.Msg { return ShowListMsg{} }

// ShowCreateCmd wraps ShowCreateMsg into a tea.Cmd.
func ShowCreateCmd() tea.Msg { return ShowCreateMsg{} }
