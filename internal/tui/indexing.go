package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MattJColes/icarus-sub001/internal/index"
)

type indexingModel struct {
	spinner     spinner.Model
	currentFile string
	filesDone   int
	filesTotal  int
	done        bool
	result      *index.Result
	err         error
}

func newIndexingModel() indexingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return indexingModel{
		spinner: sp,
	}
}

// scanDoneMsg is sent when the indexing pass completes.
type scanDoneMsg struct {
	result *index.Result
	err    error
}

// scanProgressMsg is sent for every file the scanner handles.
type scanProgressMsg struct {
	file  string
	done  int
	total int
}

func runScan(cfg Config) tea.Cmd {
	return func() tea.Msg {
		cfg.Scanner.OnProgress(func(file string, done, total int) {
			cfg.program.send(scanProgressMsg{file: file, done: done, total: total})
		})
		res, err := cfg.Scanner.Scan()
		return scanDoneMsg{result: res, err: err}
	}
}

func (m indexingModel) Update(msg tea.Msg) (indexingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case scanDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	case scanProgressMsg:
		m.currentFile = msg.file
		m.filesDone = msg.done
		m.filesTotal = msg.total
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m indexingModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  Indexing documents") + "\n\n"

	if m.done {
		if m.err != nil {
			s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
			s += dimStyle.Render("  Press Enter to continue to chat anyway, or q to quit.") + "\n"
			return s
		}
		if m.result.UpToDate {
			s += successStyle.Render("  ✓ Index already up to date") + "\n\n"
		} else {
			s += successStyle.Render("  ✓ Indexing complete!") + "\n\n"
			s += fmt.Sprintf("  Files: %d total, %d indexed, %d unchanged, %d unreadable\n",
				m.result.FilesTotal, m.result.FilesProcessed, m.result.FilesSkipped, m.result.FilesFailed)
			if m.result.ChunksPruned > 0 {
				s += fmt.Sprintf("  Pruned %d chunks for deleted files\n", m.result.ChunksPruned)
			}
		}
		s += "\n"
		s += dimStyle.Render("  Press Enter to start chatting") + "\n"
		return s
	}

	s += fmt.Sprintf("  %s Scanning...\n", m.spinner.View())
	if m.filesTotal > 0 {
		s += fmt.Sprintf("  %d / %d  %s\n", m.filesDone, m.filesTotal, dimStyle.Render(m.currentFile))
	}
	s += "\n"
	s += dimStyle.Render("  Large document folders may take a while...") + "\n"
	return s
}
