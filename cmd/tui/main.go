package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MrJamesThe3rd/refassist/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/refassist/internal/app"
	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/config"
	"github.com/MrJamesThe3rd/refassist/internal/export"
	"github.com/MrJamesThe3rd/refassist/internal/importer"
	ledgerStore "github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

type model struct {
	app           *app.App
	importService *importer.Service
	exportService *export.Service
	calendar      view.Calendar
	token         string

	currentView View
	status      string

	dashboardView view.DashboardModel
	gamesView     view.GamesModel
	expensesView  view.ExpensesModel
	mileageView   view.MileageModel
	importView    view.ImportModel
	exportView    view.ExportModel
	syncView      view.SyncModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewGames     View = 2
	ViewExpenses  View = 3
	ViewMileage   View = 4
	ViewImport    View = 5
	ViewExport    View = 6
	ViewSync      View = 7
)

func initialModel(a *app.App, token string) model {
	m := model{
		app:           a,
		importService: importer.NewService(),
		exportService: export.NewService(a.Ledger),
		token:         token,
		currentView:   ViewMenu,
	}

	if a.Calendar != nil {
		m.calendar = a.Calendar
	}

	m.dashboardView = view.NewDashboardModel(a.Ledger)
	m.gamesView = view.NewGamesModel(a.Ledger, m.calendar)
	m.expensesView = view.NewExpensesModel(a.Ledger)
	m.mileageView = view.NewMileageModel(a.Ledger)
	m.importView = view.NewImportModel(a.Ledger, m.importService)
	m.exportView = view.NewExportModel(m.exportService, a.Ledger, a.Location)
	m.syncView = view.NewSyncModel(a.Sync, a.Session, a.ClearAll)

	return m
}

type signedInMsg struct {
	userID string
	err    error
}

func (m model) Init() tea.Cmd {
	if m.token == "" || m.app.Session == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := view.OpCtx()
		defer cancel()

		userID, err := m.app.SignIn(ctx, m.token)

		return signedInMsg{userID: userID, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case signedInMsg:
		switch {
		case msg.userID == "":
			m.status = fmt.Sprintf("Sign in failed: %v", msg.err)
		case msg.err != nil:
			m.status = fmt.Sprintf("Signed in as %s; %v", msg.userID, msg.err)
		default:
			m.status = "Signed in as " + msg.userID
		}

		return m.broadcast(view.DataChangedMsg{})
	case view.DataChangedMsg:
		return m.broadcast(msg)
	case view.SyncStatusMsg:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)

		return m, cmd
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewGames:
		var newModel tea.Model
		newModel, cmd = m.gamesView.Update(msg)
		m.gamesView = newModel.(view.GamesModel)
	case ViewExpenses:
		var newModel tea.Model
		newModel, cmd = m.expensesView.Update(msg)
		m.expensesView = newModel.(view.ExpensesModel)
	case ViewMileage:
		var newModel tea.Model
		newModel, cmd = m.mileageView.Update(msg)
		m.mileageView = newModel.(view.MileageModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewSync:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(m.app.Ledger)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewGames
		return m, m.gamesView.Init()
	case "3":
		m.currentView = ViewExpenses
		return m, m.expensesView.Init()
	case "4":
		m.currentView = ViewMileage
		return m, m.mileageView.Init()
	case "5":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.app.Ledger, m.importService)

		return m, m.importView.Init()
	case "6":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.exportService, m.app.Ledger, m.app.Location)

		return m, m.exportView.Init()
	case "7":
		m.currentView = ViewSync
		return m, m.syncView.Init()
	}

	return m, nil
}

// broadcast delivers msg to every view that shows stored data.
func (m model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	var (
		newModel tea.Model
		cmd      tea.Cmd
	)

	newModel, cmd = m.dashboardView.Update(msg)
	m.dashboardView = newModel.(view.DashboardModel)
	cmds = append(cmds, cmd)

	newModel, cmd = m.gamesView.Update(msg)
	m.gamesView = newModel.(view.GamesModel)
	cmds = append(cmds, cmd)

	newModel, cmd = m.expensesView.Update(msg)
	m.expensesView = newModel.(view.ExpensesModel)
	cmds = append(cmds, cmd)

	newModel, cmd = m.mileageView.Update(msg)
	m.mileageView = newModel.(view.MileageModel)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return m.viewMenu()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewGames:
		return m.gamesView.View()
	case ViewExpenses:
		return m.expensesView.View()
	case ViewMileage:
		return m.mileageView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	case ViewSync:
		return m.syncView.View()
	}

	return "Unknown View"
}

func (m model) viewMenu() string {
	menu := "Ref Assistant\n\n" +
		"1. Dashboard\n" +
		"2. Games\n" +
		"3. Expenses\n" +
		"4. Mileage\n" +
		"5. Import Schedule\n" +
		"6. Export\n" +
		"7. Cloud Sync\n\n" +
		"q. Quit"

	if m.status != "" {
		menu += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a rotated file.
	logFile := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("failed to run TUI", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close", "error", err)
		}
	}()

	p := tea.NewProgram(initialModel(a, cfg.Auth.Token))

	if a.WatchPath != "" {
		go func() {
			err := ledgerStore.Watch(ctx, a.WatchPath, func() {
				if err := a.Ledger.Reload(ctx); err != nil {
					slog.Warn("failed to reload local data", "error", err)
					return
				}

				p.Send(view.DataChangedMsg{})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("watching local data stopped", "error", err)
			}
		}()
	}

	if a.Sync != nil {
		unsubscribe := a.Sync.Subscribe(func(st cloudsync.Status) {
			go p.Send(view.SyncStatusMsg{Status: st})
		})
		defer unsubscribe()
	}

	_, err = p.Run()

	return err
}
