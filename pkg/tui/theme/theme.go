package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header  HeaderTheme
	Footer  FooterTheme
	Journal JournalTheme
	Form    FormTheme
}

// HeaderTheme styles the top bar showing network and account.
type HeaderTheme struct {
	Bar     lipgloss.Style
	App     lipgloss.Style
	Network lipgloss.Style
	Account lipgloss.Style
}

// FooterTheme groups styles used by the bottom help and status line.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// JournalTheme styles the list and detail views.
type JournalTheme struct {
	Title     lipgloss.Style
	Meta      lipgloss.Style
	Timestamp lipgloss.Style
	Content   lipgloss.Style
	Empty     lipgloss.Style
	Error     lipgloss.Style
	Composer  lipgloss.Style
}

// FormTheme styles the creation form.
type FormTheme struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Disabled lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	return Theme{
		Header: HeaderTheme{
			Bar:     lipgloss.NewStyle().Padding(0, 1),
			App:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Network: lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
			Account: muted,
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: muted,
			Error:  errorStyle,
		},
		Journal: JournalTheme{
			Title:     lipgloss.NewStyle().Bold(true),
			Meta:      muted,
			Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Content:   lipgloss.NewStyle(),
			Empty:     muted.Italic(true),
			Error:     errorStyle,
			Composer: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
		},
		Form: FormTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title:    lipgloss.NewStyle().Bold(true),
			Label:    lipgloss.NewStyle(),
			Disabled: muted,
		},
	}
}
