package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/refassist/internal/importer"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const importTimeout = 30 * time.Second

type importState int

const (
	importStateSourceSelect importState = iota
	importStateFilePick
	importStateParsing
	importStatePreview
	importStateResult
)

type ImportModel struct {
	CommonModel
	store         *ledger.Store
	importService *importer.Service

	state          importState
	filePicker     filepicker.Model
	selectedSource importer.Source
	sourceOptions  []importer.Source
	sourceCursor   int

	parsed      []ledger.NewGame
	previewList list.Model
	skipped     map[int]bool

	status string
	err    error
}

func NewImportModel(store *ledger.Store, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		store:         store,
		importService: impSvc,
		filePicker:    fp,
		sourceOptions: []importer.Source{importer.SourceSchedule},
		skipped:       make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Games" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Space: skip | a: keep all | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateSourceSelect {
			return m.updateSourceSelect(msg)
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.games) == 0 {
			m.state = importStateResult
			m.status = "No games found in file."

			return m, nil
		}

		m.parsed = msg.games
		m.skipped = make(map[int]bool)
		m.state = importStatePreview

		items := make([]list.Item, len(m.parsed))
		for i, g := range m.parsed {
			items[i] = gameItem{game: g, index: i}
		}

		m.previewList = list.New(items, gameDelegate{skipped: m.skipped}, 80, 20)
		m.previewList.Title = fmt.Sprintf("%d games found", len(m.parsed))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d games.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateSourceSelect
		return m, nil
	case importStateResult, importStatePreview:
		m.state = importStateSourceSelect
		m.err = nil
		m.status = ""
		m.parsed = nil
		m.skipped = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSourceSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case tea.KeyDown:
		if m.sourceCursor < len(m.sourceOptions)-1 {
			m.sourceCursor++
		}
	case tea.KeyEnter:
		m.selectedSource = m.sourceOptions[m.sourceCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.previewList.Index()
		m.skipped[idx] = !m.skipped[idx]

		return m, nil
	case "a":
		clear(m.skipped)
		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSourceSelect:
		return m.viewSourceSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSourceSelect() string {
	s := "Select file type:\n\n"

	for i, source := range m.sourceOptions {
		cursor := " "
		if i == m.sourceCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(source))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedSource, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle(m.status) + "\n\n(Esc to go back)")
}

// Messages

type parseResultMsg struct {
	games []ledger.NewGame
	err   error
}

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	source := m.selectedSource

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		games, err := m.importService.Import(source, f)
		if err != nil {
			return parseResultMsg{err: err}
		}

		return parseResultMsg{games: games}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	keep := make([]ledger.NewGame, 0, len(m.parsed))
	for i, g := range m.parsed {
		if !m.skipped[i] {
			keep = append(keep, g)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		added, err := m.store.AddGames(ctx, keep)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{count: len(added)}
	}
}

// Preview list item

type gameItem struct {
	game  ledger.NewGame
	index int
}

func (i gameItem) Title() string       { return "" }
func (i gameItem) Description() string { return "" }
func (i gameItem) FilterValue() string { return "" }

// Preview list delegate

type gameDelegate struct {
	skipped map[int]bool
}

func (d gameDelegate) Height() int                             { return 2 }
func (d gameDelegate) Spacing() int                            { return 0 }
func (d gameDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d gameDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(gameItem)
	if !ok {
		return
	}

	checkbox := "[x]"
	if d.skipped[item.index] {
		checkbox = "[ ]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	g := item.game

	line1 := fmt.Sprintf("%s%s %s %s  %s v %s", cursor, checkbox, g.Date, g.Time, g.Home, g.Away)
	line2 := fmt.Sprintf("      %s  %s", g.League, FormatMoney(g.Pay))

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
