// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
package dashboard

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/config"
	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/store"
	"github.com/morganforge/consigliere-tui/internal/stream"
	"github.com/morganforge/consigliere-tui/internal/ui/components"
	"github.com/morganforge/consigliere-tui/internal/ui/styles"
)

// Focus identifies which region receives key input.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
	FocusTranscript
	FocusActions
	FocusWizard
)

// Model is the dashboard's Bubble Tea model.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	client *api.Client
	cache  *store.Cache
	engine *stream.Engine

	// Dimensions
	width  int
	height int

	// Sidebar
	chats            []model.ChatSummary
	chatCursor       int
	chatFilter       string
	filteringChats   bool
	chatsOffline     bool
	confirmingDelete bool

	// Active conversation
	activeChatID string
	transcript   *model.Transcript
	dossier      *model.Dossier
	loadingChat  bool

	// Selection for the step panel. selectedID is the user's explicit
	// choice; empty means automatic.
	selectedID  string
	streamingID string

	// Dossier action focus (-1 = none).
	actionCursor int

	// Onboarding wizard (upload / db connect).
	wizard *wizardState

	// Components
	viewport    viewport.Model
	input       textinput.Model
	spin        spinner.Model
	messageView *components.MessageView
	stepView    *components.StepView
	dossierView *components.DossierView
	statusBar   *components.StatusBar

	keys  KeyMap
	focus Focus

	// Auto-scroll: follow the stream until the user scrolls away.
	autoScroll bool

	// Transient status note.
	status string

	// Transcript version last rendered into the viewport.
	renderedVersion uint64
}

// New creates the dashboard model. cache may be nil when the local mirror
// is disabled.
func New(cfg *config.Config, client *api.Client, cache *store.Cache) *Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask about your data…"
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	stepView := components.NewStepView(theme)
	stepView.ResolveAsset = client.ResolveAsset

	m := &Model{
		cfg:          cfg,
		theme:        theme,
		client:       client,
		cache:        cache,
		engine:       stream.NewEngine(client),
		transcript:   model.NewTranscript(""),
		input:        input,
		spin:         spin,
		messageView:  components.NewMessageView(theme),
		stepView:     stepView,
		dossierView:  components.NewDossierView(theme),
		statusBar:    components.NewStatusBar(theme),
		keys:         DefaultKeyMap(),
		focus:        FocusInput,
		actionCursor: -1,
		autoScroll:   true,
	}
	return m
}

// Init starts the spinner and loads the chat list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadChatsCmd())
}

// activeChat returns the summary of the active chat, or nil.
func (m *Model) activeChat() *model.ChatSummary {
	for i := range m.chats {
		if m.chats[i].ID == m.activeChatID {
			return &m.chats[i]
		}
	}
	return nil
}

// resetHome clears the active conversation and returns to the home view.
func (m *Model) resetHome() {
	m.activeChatID = ""
	m.transcript.Reset("")
	m.dossier = nil
	m.selectedID = ""
	m.streamingID = ""
	m.actionCursor = -1
	m.loadingChat = false
	m.renderedVersion = 0
}
