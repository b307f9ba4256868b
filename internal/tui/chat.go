package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/MattJColes/icarus-sub001/internal/chat"
	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/llm"
	"github.com/MattJColes/icarus-sub001/internal/rag"
)

type chatModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	messages    []chatMessage
	serializer  *chat.Serializer
	conv        *chat.Conversation
	opts        *llm.Options
	cfg         Config
	generating  bool
	queued      int
	stream      strings.Builder
	width       int
	height      int
	initialized bool
}

type chatMessage struct {
	role    string // user, assistant, error, system, sources
	content string
	sources []rag.Source
}

// genStartedMsg marks a queued request becoming the in-flight one.
type genStartedMsg struct {
	id int64
}

// sourcesMsg carries retrieval feedback, emitted before generation begins so
// the user sees what was found even if the generation fails.
type sourcesMsg struct {
	sources rag.Sources
}

// streamDeltaMsg carries one incremental fragment of the streamed reply.
type streamDeltaMsg struct {
	content  string
	thinking string
}

// genDoneMsg is sent when a generation finishes, successfully or not.
type genDoneMsg struct {
	id      int64
	content string
	err     error
}

// chatEngine executes one queued request at a time on behalf of the
// serializer, reporting progress to the TUI through the program ref.
type chatEngine struct {
	cfg    Config
	conv   *chat.Conversation
	client *llm.Client
}

func (e *chatEngine) run(req chat.Request) {
	send := e.cfg.program.send
	send(genStartedMsg{id: req.ID})

	var hits []index.Hit
	if e.cfg.App.RAGEnabled {
		hits = e.cfg.Store.Search(req.Prompt, e.cfg.App.Sensitivity)
	}
	if len(hits) > 0 {
		send(sourcesMsg{sources: rag.SourcesFromHits(req.Prompt, hits)})
	}

	msgs := rag.BuildMessages(hits, e.conv.Snapshot(), req.Prompt)
	reply, err := e.client.Chat(context.Background(), msgs, req.Options, func(ev llm.StreamEvent) {
		if ev.Message.Content != "" || ev.Message.Thinking != "" {
			send(streamDeltaMsg{content: ev.Message.Content, thinking: ev.Message.Thinking})
		}
	})
	if err != nil {
		send(genDoneMsg{id: req.ID, err: err})
		return
	}

	e.conv.Append(
		llm.Message{Role: "user", Content: req.Prompt},
		llm.Message{Role: "assistant", Content: reply.Content},
	)
	send(genDoneMsg{id: req.ID, content: reply.Content})
}

func newChatModel(cfg Config) chatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.CharLimit = 2000
	ti.Focus()

	conv := chat.NewConversation(20)
	engine := &chatEngine{
		cfg:    cfg,
		conv:   conv,
		client: llm.NewClient(cfg.App.OllamaURL, cfg.App.ChatModel),
	}

	return chatModel{
		spinner:    sp,
		input:      ti,
		serializer: chat.NewSerializer(engine.run),
		conv:       conv,
		opts: &llm.Options{
			Temperature:   cfg.App.Generation.Temperature,
			NumCtx:        cfg.App.Generation.ContextWindow,
			TopP:          cfg.App.Generation.TopP,
			TopK:          cfg.App.Generation.TopK,
			RepeatPenalty: cfg.App.Generation.RepeatPenalty,
		},
		cfg: cfg,
	}
}

func (m *chatModel) initViewport(width, height int) {
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + input (1 line) + gap.
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Welcome to Icarus! Ask a question about your documents.\n\nCommands: /help, /clear, /exit"))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case genStartedMsg:
		m.generating = true
		m.queued = m.serializer.QueueLen()
		m.stream.Reset()
		m.refreshViewport()
		return m, m.spinner.Tick

	case sourcesMsg:
		m.messages = append(m.messages, chatMessage{role: "sources", sources: msg.sources.Sources})
		m.refreshViewport()
		return m, nil

	case streamDeltaMsg:
		m.stream.WriteString(msg.content)
		m.refreshViewport()
		return m, nil

	case genDoneMsg:
		m.generating = false
		m.queued = m.serializer.QueueLen()
		m.stream.Reset()
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, chatMessage{role: "assistant", content: msg.content})
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.generating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refreshViewport()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/clear":
				m.messages = nil
				m.conv.Clear()
				m.viewport.SetContent(dimStyle.Render("Conversation cleared."))
				return m, nil
			case "/help":
				helpText := "Commands:\n  /clear  - clear conversation history\n  /exit   - quit\n  /help   - show this help\n\nQuestions asked while a reply is streaming are queued and answered in order."
				m.messages = append(m.messages, chatMessage{role: "system", content: helpText})
				m.refreshViewport()
				return m, nil
			}

			// Submissions are accepted at any time; the serializer runs one
			// generation at a time and queues the rest in arrival order.
			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.serializer.Submit(question, m.opts)
			m.queued = m.serializer.QueueLen()
			m.refreshViewport()
			return m, m.spinner.Tick
		}
	}

	// Update text input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Update viewport (scrolling).
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m chatModel) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		case "sources":
			var files []string
			for _, s := range msg.sources {
				files = append(files, s.File)
			}
			sb.WriteString(sourceStyle.Render("⛁ sources: "+strings.Join(files, ", ")) + "\n\n")
		}
	}

	if m.generating {
		if m.stream.Len() > 0 {
			// Show the raw partial reply; markdown rendering waits until the
			// message is complete.
			sb.WriteString(assistantMsgStyle.Render(m.stream.String()) + "\n")
		} else {
			sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Generating...") + "\n")
		}
	}

	return sb.String()
}

func (m chatModel) View(width, height int) string {
	if !m.initialized {
		return ""
	}

	statusText := "idle"
	if m.generating {
		statusText = "generating..."
	}
	if m.queued > 0 {
		statusText += fmt.Sprintf(" (%d queued)", m.queued)
	}
	ragText := "rag off"
	if m.cfg.App.RAGEnabled {
		ragText = "rag on"
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" icarus • %s • %s", statusText, ragText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
