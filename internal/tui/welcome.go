package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MattJColes/icarus-sub001/internal/llm"
)

type indexStatus int

const (
	indexEmpty indexStatus = iota
	indexReady
)

type welcomeModel struct {
	status     indexStatus
	chunkCount int
	ollamaErr  error
	ready      bool // true once the check has completed
}

// checkIndexMsg is sent after checking the index and model service.
type checkIndexMsg struct {
	status     indexStatus
	chunkCount int
	ollamaErr  error
}

func checkIndex(cfg Config) tea.Cmd {
	return func() tea.Msg {
		msg := checkIndexMsg{chunkCount: cfg.Store.Len()}
		if msg.chunkCount > 0 {
			msg.status = indexReady
		}
		if _, err := llm.ListModels(cfg.App.OllamaURL); err != nil {
			msg.ollamaErr = err
		}
		return msg
	}
}

func (m welcomeModel) Update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case checkIndexMsg:
		m.status = msg.status
		m.chunkCount = msg.chunkCount
		m.ollamaErr = msg.ollamaErr
		m.ready = true
	}
	return m, nil
}

func (m welcomeModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ Icarus") + "\n"
	s += subtitleStyle.Render("  Chat with a local model over your own documents") + "\n\n"

	if !m.ready {
		s += dimStyle.Render("  Checking index...") + "\n"
		return s
	}

	switch m.status {
	case indexReady:
		s += successStyle.Render(fmt.Sprintf("  ✓ Index ready (%d chunks)", m.chunkCount)) + "\n"
	case indexEmpty:
		s += warnStyle.Render("  ✗ Document index is empty") + "\n"
	}

	if m.ollamaErr != nil {
		s += errorStyle.Render("  ✗ Ollama unreachable") + "\n"
		s += dimStyle.Render("    "+m.ollamaErr.Error()) + "\n"
	} else {
		s += successStyle.Render("  ✓ Ollama reachable") + "\n"
	}

	s += "\n"
	s += dimStyle.Render("  Press Enter to continue") + "\n"
	return s
}
