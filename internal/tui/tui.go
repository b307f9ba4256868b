package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MattJColes/icarus-sub001/internal/config"
	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/watcher"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewSetup
	ViewIndexing
	ViewChat
)

// programRef is an indirect pointer to the tea.Program so background
// goroutines can send messages. It must be set after tea.NewProgram returns
// but before Run.
type programRef struct {
	p *tea.Program
}

func (r *programRef) send(msg tea.Msg) {
	if r != nil && r.p != nil {
		r.p.Send(msg)
	}
}

// Config holds everything the TUI needs from the CLI layer.
type Config struct {
	App     *config.Config
	Store   *index.Store
	Scanner *index.Scanner

	// program is set internally so background goroutines can send messages.
	program *programRef
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	welcome  welcomeModel
	setup    setupModel
	indexing indexingModel
	chat     chatModel
	err      error
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:  ViewWelcome,
		config: cfg,
	}
}

func (m Model) Init() tea.Cmd {
	return checkIndex(m.config)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != ViewChat {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewWelcome:
		m.welcome, cmd = m.welcome.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.welcome.ready {
			if m.welcome.status == indexReady {
				return m, m.transitionToChat()
			}
			// Index empty — pick a model, then build it.
			m.state = ViewSetup
			return m, fetchModels(m.config.App.OllamaURL)
		}

	case ViewSetup:
		m.setup, cmd = m.setup.Update(msg, m.config)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.setup.loaded && m.setup.err == nil && len(m.setup.models) > 0 {
			if sel := m.setup.selectedModel(); sel != "" {
				m.config.App.ChatModel = sel
			}
			m.state = ViewIndexing
			m.indexing = newIndexingModel()
			return m, tea.Batch(m.indexing.spinner.Tick, runScan(m.config))
		}

	case ViewIndexing:
		m.indexing, cmd = m.indexing.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.indexing.done {
			return m, m.transitionToChat()
		}

	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) transitionToChat() tea.Cmd {
	m.chat = newChatModel(m.config)
	m.chat.initViewport(m.width, m.height)
	m.state = ViewChat

	// One-time startup refresh so an index built in an earlier session picks
	// up files changed since. Runs in the background; chat is usable
	// immediately.
	return startupScan(m.config)
}

func startupScan(cfg Config) tea.Cmd {
	return func() tea.Msg {
		if len(cfg.App.Directories) == 0 {
			return nil
		}
		if _, err := cfg.Scanner.Scan(); err != nil && err != index.ErrScanInProgress {
			fmt.Fprintf(os.Stderr, "warning: startup scan: %v\n", err)
		}
		return nil
	}
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	switch m.state {
	case ViewWelcome:
		return m.welcome.View(m.width, m.height)
	case ViewSetup:
		return m.setup.View(m.width, m.height)
	case ViewIndexing:
		return m.indexing.View(m.width, m.height)
	case ViewChat:
		return m.chat.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program along with the background reindex services,
// which are stopped when the program exits.
func Run(cfg Config) error {
	ref := &programRef{}
	cfg.program = ref
	model := New(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.p = p

	scheduler := index.NewScheduler(cfg.Scanner, time.Duration(cfg.App.ReindexHours)*time.Hour)
	scheduler.Start()
	defer scheduler.Stop()

	if len(cfg.App.Directories) > 0 {
		w, err := watcher.New(cfg.App.Directories, 2*time.Second, func() {
			if _, err := cfg.Scanner.Scan(); err != nil && err != index.ErrScanInProgress {
				fmt.Fprintf(os.Stderr, "warning: watch-triggered scan: %v\n", err)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: file watching disabled: %v\n", err)
		} else {
			w.Start()
			defer w.Stop()
		}
	}

	_, err := p.Run()
	return err
}
