// Package tui provides a Bubble Tea terminal user interface for udemy-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/udemy-downloader/internal/config"
	"github.com/handiism/udemy-downloader/internal/download"
	"github.com/handiism/udemy-downloader/internal/logger"
	"github.com/handiism/udemy-downloader/internal/udemy"
	"go.uber.org/zap"
)

// LogFileName is the file in the temp folder the TUI writes its log to.
const LogFileName = "udemy-tui.log"

// maxLogs is how many progress lines stay on screen.
const maxLogs = 10

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A435F0")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	courseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state      State
	urlInput   textinput.Model
	topicInput textinput.Model
	spinner    spinner.Model
	progress   progress.Model
	settings   *config.Settings
	log        *zap.Logger
	logPath    string
	logs       []LogEntry
	courses    []string
	err        error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference and its progress events
	manager *download.Manager
	events  chan download.ProgressEvent

	stats download.Progress

	// Options
	coverArt bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. log may be nil.
func NewModel(settings *config.Settings, log *zap.Logger, logPath string) Model {
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "https://www.udemy.com/course/name/ (empty: configured topics)"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	topic := textinput.New()
	topic.Placeholder = "topic folder, or topic to download"
	topic.CharLimit = 200
	topic.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#A435F0"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		urlInput:   ti,
		topicInput: topic,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		log:        log,
		logPath:    logPath,
		logs:       make([]LogEntry, 0),
		ctx:        ctx,
		cancel:     cancel,
		coverArt:   settings.SaveCoverArt,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every progress event of the manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes. Err may be set
	// alongside Manager when only some courses could be resolved.
	InitDoneMsg struct {
		Courses []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Progress download.Progress
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab", "shift+tab":
			if m.state == StateInput {
				if m.urlInput.Focused() {
					m.urlInput.Blur()
					cmds = append(cmds, m.topicInput.Focus())
				} else {
					m.topicInput.Blur()
					cmds = append(cmds, m.urlInput.Focus())
				}
				return m, tea.Batch(cmds...)
			}

		case "enter":
			if m.state == StateInput {
				m.state = StateInitializing
				m.events = make(chan download.ProgressEvent, 64)
				return m, tea.Batch(m.initializeDownload(), waitForEvent(m.events), m.spinner.Tick)
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.coverArt = !m.coverArt
				return m, nil
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for new download
				m.state = StateInput
				m.logs = nil
				m.courses = nil
				m.err = nil
				m.stats = download.Progress{}
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.urlInput.SetValue("")
				m.topicInput.Blur()
				return m, m.urlInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}
		return m, tea.Batch(cmds...)

	case InitDoneMsg:
		if m.state != StateInitializing {
			return m, nil
		}
		if msg.Manager == nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			if msg.Err != nil {
				m.log.Warn("some courses were skipped", zap.Error(msg.Err))
			}
			m.courses = msg.Courses
			m.manager = msg.Manager
			m.state = StateDownloading
			// Start the actual download and tick for progress updates
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		if m.state != StateDownloading {
			return m, nil
		}
		m.stats = msg.Progress
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil && msg.Progress.CoursesDone == 0:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.err = msg.Err
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			m.stats = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.stats.Percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text inputs
	if m.state == StateInput {
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)
		cmds = append(cmds, cmd)
		m.topicInput, cmd = m.topicInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent returns a command that delivers the next progress event.
// It yields nothing once the channel is closed.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎓 Udemy Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download course materials from Udemy"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter course URL(s):"))
	b.WriteString("\n\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Topic:"))
	b.WriteString("\n\n")
	b.WriteString(m.topicInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Save cover art (ctrl+o)\n", checkbox(m.coverArt)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+g)\n", checkbox(m.verbose)))
	b.WriteString("\n")

	if len(m.settings.Topics) > 0 {
		names := make([]string, len(m.settings.Topics))
		for i, t := range m.settings.Topics {
			names[i] = t.Name
		}
		b.WriteString(dimStyle.Render("Configured topics: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Destination: %s", m.settings.Destination)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching course info..."))
	b.WriteString("\n\n")

	// Show logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	// Courses found
	if len(m.courses) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d course(s):", len(m.courses))))
		b.WriteString("\n")
		for _, course := range m.courses {
			b.WriteString(courseStyle.Render(fmt.Sprintf("  • %s", course)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.stats.Percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Courses: %d/%d | Files: %d | Downloaded: %.2f MB",
		m.stats.CoursesDone+m.stats.CoursesFailed,
		m.stats.CoursesTotal,
		m.stats.Files,
		float64(m.stats.Bytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Courses: %d/%d\n"+
			"Files: %d\n"+
			"Size: %.2f MB",
		m.stats.CoursesDone,
		m.stats.CoursesTotal,
		m.stats.Files,
		float64(m.stats.Bytes)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("%d course(s) failed:", m.stats.CoursesFailed)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
	}
	if m.logPath != "" {
		b.WriteString(dimStyle.Render("Log: " + m.logPath))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	if m.logPath != "" {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Log: " + m.logPath))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • ctrl+o: cover art • ctrl+g: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload resolves the courses and creates the manager.
func (m Model) initializeDownload() tea.Cmd {
	settings := *m.settings
	settings.SaveCoverArt = m.coverArt

	urls := strings.TrimSpace(m.urlInput.Value())
	topic := strings.TrimSpace(m.topicInput.Value())
	ctx, events, log := m.ctx, m.events, m.log

	return func() tea.Msg {
		fail := func(err error) tea.Msg {
			close(events)
			return InitDoneMsg{Err: err}
		}

		if err := settings.Validate(); err != nil {
			return fail(err)
		}

		var (
			jobs []download.Job
			err  error
		)
		if urls != "" {
			jobs, err = download.JobsFromURLs(urls, settings.TopicDestination(topic))
		} else {
			jobs, err = download.JobsFromTopics(&settings, topic)
		}
		if len(jobs) == 0 {
			if err == nil {
				err = errors.New("no courses to download: enter a URL or add topics to config.yaml")
			}
			return fail(err)
		}

		api, apiErr := udemy.NewAPIFromSettings(&settings, log)
		if apiErr != nil {
			return fail(apiErr)
		}

		manager := download.NewManager(&settings, api, log, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})

		initErr := manager.Initialize(ctx, jobs)
		courses := manager.GetCourseNames()
		if len(courses) == 0 {
			if initErr == nil {
				initErr = errors.New("no course could be resolved")
			}
			return fail(initErr)
		}

		return InitDoneMsg{
			Courses: courses,
			Manager: manager,
			Err:     errors.Join(err, initErr),
		}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	manager, ctx, events := m.manager, m.ctx, m.events

	return func() tea.Msg {
		defer close(events)

		err := manager.StartDownloads(ctx)
		return DownloadDoneMsg{
			Progress: manager.GetProgress(),
			Err:      err,
		}
	}
}

// Run loads the configuration and starts the TUI application. Logs go to
// LogFileName in the temp folder so they do not garble the screen.
func Run() error {
	settings, err := config.Load("")
	if err != nil {
		return err
	}

	logPath := filepath.Join(os.TempDir(), LogFileName)
	if err := logger.Init(settings.Logging.Level, settings.Logging.Format, logPath); err != nil {
		return err
	}
	defer logger.Sync()

	p := tea.NewProgram(NewModel(settings, logger.L(), logPath), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
