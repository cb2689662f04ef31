package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/workspacefinder"
)

type screen int

const (
	screenHome screen = iota
	screenPipelines
	screenProfiles
	screenPreview
	screenRun
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type refItem struct {
	name string
	path string
}

func (r refItem) Title() string       { return r.name }
func (r refItem) Description() string { return r.path }
func (r refItem) FilterValue() string { return r.name }

type model struct {
	theme Theme
	deps  Deps

	scr   screen
	menu  list.Model
	pipes list.Model
	profs list.Model

	preview     string
	previewPath string

	running   bool
	runCh     chan runnerDoneMsg
	lastRun   *domain.RunResult
	lastRunID string

	toast string

	workspaceFound bool
	workspaceRoot  string
	defaultProfile string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Pipelines", "Browse, preview, and run post-processing pipelines"},
		menuItem{"Profiles", "Cluster and environment variable sets"},
		menuItem{"Init Workspace", "Create coeqtl.yaml and the starter layout here"},
		menuItem{"Quit", "Exit coeqtlctl"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "coeqtlctl"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	pipes := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	pipes.Title = "Pipelines"
	pipes.SetShowStatusBar(false)
	pipes.SetShowHelp(false)

	profs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	profs.Title = "Profiles"
	profs.SetShowStatusBar(false)
	profs.SetShowHelp(false)

	m := model{
		theme: t,
		deps:  deps,
		scr:   screenHome,
		menu:  l,
		pipes: pipes,
		profs: profs,
	}

	wd, err := os.Getwd()
	if err == nil && deps.WorkspaceLocator != nil {
		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
			if cfg, cfgErr := workspacefinder.LoadConfig(root); cfgErr == nil {
				m.defaultProfile = cfg.Defaults.Profile
			}
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.menu.SetSize(w-4, h-10)
		m.pipes.SetSize(w-4, h-10)
		m.profs.SetSize(w-4, h-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if msg.err != nil && !msg.found {
			m.toast = userMessage(msg.err)
		}
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace initialized"
		return m, cmdRefreshWorkspace(m.deps)

	case pipelinesLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, refItem{name: r.Name, path: r.Path})
		}
		m.pipes.SetItems(items)
		return m, nil

	case profilesLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, refItem{name: r.Name, path: r.Path})
		}
		m.profs.SetItems(items)
		return m, nil

	case pipelinePreviewMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.preview = msg.preview
		m.previewPath = msg.path
		m.scr = screenPreview
		return m, nil

	case runnerDoneMsg:
		m.running = false
		m.runCh = nil
		if msg.err != nil {
			m.toast = userMessage(msg.err)
		}
		run := msg.run
		m.lastRun = &run
		m.lastRunID = msg.id
		m.scr = screenRun
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m.updateLists(msg)
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		m.scr = screenHome
		m.toast = ""
		return m, nil

	case "esc", "b":
		switch m.scr {
		case screenPreview, screenRun:
			m.scr = screenPipelines
		case screenPipelines, screenProfiles:
			m.scr = screenHome
		}
		m.toast = ""
		return m, nil

	case "enter":
		switch m.scr {
		case screenHome:
			it, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			switch {
			case strings.EqualFold(it.title, "Quit"):
				return m, tea.Quit
			case strings.EqualFold(it.title, "Pipelines"):
				if !m.workspaceFound {
					m.toast = "No workspace found"
					return m, nil
				}
				m.scr = screenPipelines
				return m, cmdLoadPipelines(m.workspaceRoot)
			case strings.EqualFold(it.title, "Profiles"):
				if !m.workspaceFound {
					m.toast = "No workspace found"
					return m, nil
				}
				m.scr = screenProfiles
				return m, cmdLoadProfiles(m.workspaceRoot)
			case strings.EqualFold(it.title, "Init Workspace"):
				wd, err := os.Getwd()
				if err != nil {
					m.toast = "Unexpected error (see logs)"
					return m, nil
				}
				return m, cmdInitWorkspaceHere(m.deps, wd)
			}
			return m, nil

		case screenPipelines:
			it, ok := m.pipes.SelectedItem().(refItem)
			if !ok {
				return m, nil
			}
			return m, cmdPreviewPipeline(it.path)
		}

	case "r":
		if m.running {
			return m, nil
		}
		var path string
		switch m.scr {
		case screenPipelines:
			if it, ok := m.pipes.SelectedItem().(refItem); ok {
				path = it.path
			}
		case screenPreview:
			path = m.previewPath
		}
		if path == "" {
			return m, nil
		}

		m.running = true
		m.toast = ""
		ch, cmd := startRunAsync(m.workspaceRoot, path, m.defaultProfile, m.deps.Logger, m.deps.Debug)
		m.runCh = ch
		m.scr = screenRun
		m.lastRun = nil
		m.lastRunID = ""
		return m, cmd
	}

	return m.updateLists(msg)
}

func (m model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenPipelines:
		m.pipes, cmd = m.pipes.Update(msg)
	case screenProfiles:
		m.profs, cmd = m.profs.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("coeqtlctl") + "\n" +
		m.theme.Subtitle.Render("coeQTL mapping post-processing driver") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			"⚠ No workspace found.\n\nUse Init Workspace to create one here.",
		)
	}

	if m.toast != "" {
		workspaceBanner += "\n" + m.theme.Help.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenPipelines:
		help := m.theme.Help.Render("enter preview • r run • esc back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.pipes.View()) + "\n" + help)

	case screenProfiles:
		help := m.theme.Help.Render("esc back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.profs.View()) + "\n" + help)

	case screenPreview:
		help := m.theme.Help.Render("r run • esc back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.preview) + "\n" + help)

	case screenRun:
		body := "Running…"
		if !m.running && m.lastRun != nil {
			body = renderRunSummary(*m.lastRun, m.lastRunID)
		}
		help := m.theme.Help.Render("esc back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(body) + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
