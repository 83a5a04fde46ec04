package tui

import tea "github.com/charmbracelet/bubbletea"

// Run shows the copy until it finishes and the user dismisses the summary.
func Run(cfg Config, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(NewModel(cfg), opts...).Run()
	if err != nil {
		return Model{}, err
	}
	model, ok := final.(Model)
	if !ok {
		return Model{}, nil
	}
	return model, nil
}
