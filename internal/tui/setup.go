package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MattJColes/icarus-sub001/internal/llm"
)

type setupModel struct {
	models []llm.Model
	cursor int
	loaded bool
	err    error
}

// fetchModelsMsg is sent when models have been fetched from Ollama.
type fetchModelsMsg struct {
	models []llm.Model
	err    error
}

func fetchModels(baseURL string) tea.Cmd {
	return func() tea.Msg {
		models, err := llm.ListModels(baseURL)
		return fetchModelsMsg{models: models, err: err}
	}
}

func (m setupModel) Update(msg tea.Msg, cfg Config) (setupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchModelsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.loaded = true
			return m, nil
		}
		m.models = msg.models
		m.loaded = true

		for i, model := range m.models {
			if model.Name == cfg.App.ChatModel {
				m.cursor = i
				break
			}
		}

	case tea.KeyMsg:
		if !m.loaded || m.err != nil {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.models)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m setupModel) View(width, height int) string {
	s := "\n"

	if !m.loaded {
		s += titleStyle.Render("  Model Selection") + "\n\n"
		s += dimStyle.Render("  Fetching models from Ollama...") + "\n"
		return s
	}

	if m.err != nil {
		s += titleStyle.Render("  Model Selection") + "\n\n"
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
		s += dimStyle.Render("  Make sure Ollama is running and try again.") + "\n"
		s += dimStyle.Render("  Press q to quit.") + "\n"
		return s
	}

	if len(m.models) == 0 {
		s += titleStyle.Render("  Model Selection") + "\n\n"
		s += warnStyle.Render("  No models found in Ollama.") + "\n"
		s += dimStyle.Render("  Pull one first: icarus pull qwen3:8b") + "\n"
		return s
	}

	s += titleStyle.Render("  Select Chat Model") + "\n"
	s += dimStyle.Render("  Used for answering questions about your documents") + "\n\n"
	for i, model := range m.models {
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		s += fmt.Sprintf("  %s%s\n", cursor, style.Render(fmt.Sprintf("%s (%s)", model.Name, formatSize(model.Size))))
	}
	s += "\n"
	s += helpStyle.Render("  ↑/↓ navigate • Enter confirm") + "\n"

	return s
}

func (m setupModel) selectedModel() string {
	if len(m.models) > 0 && m.cursor < len(m.models) {
		return m.models[m.cursor].Name
	}
	return ""
}

// formatSize returns a human-readable size string.
func formatSize(bytes int64) string {
	const gb = 1024 * 1024 * 1024
	const mb = 1024 * 1024
	if bytes >= gb {
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	}
	return fmt.Sprintf("%.0f MB", float64(bytes)/float64(mb))
}
