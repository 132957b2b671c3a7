// Package tui drives the terminal interface: a fixed-tick event loop that
// renders, drains background results, polls the chat task, and reads input.
// The loop never performs network or AI work itself.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/roeyazroel/launchpad-tui/internal/ai"
	"github.com/roeyazroel/launchpad-tui/internal/launchpad"
	"github.com/roeyazroel/launchpad-tui/internal/logger"
)

// tickRate is the wall-clock budget of one loop iteration.
const tickRate = 120 * time.Millisecond

const initialResponseText = "Loading response from Gemini..."

// Screen identifies the visible screen.
type Screen int

const (
	ScreenBugList Screen = iota
	ScreenBugEditing
)

// Panel identifies the focused half of the layout.
type Panel int

const (
	PanelLeft Panel = iota
	PanelRight
)

// textBuffer carries the AI response and edit text. It is the one piece of
// state shared between the event loop and background tasks; everything else
// belongs to the loop alone.
type textBuffer struct {
	mu   sync.Mutex
	text string
}

func (b *textBuffer) Set(s string) {
	b.mu.Lock()
	b.text = s
	b.mu.Unlock()
}

func (b *textBuffer) Get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Options configures a new App.
type Options struct {
	// Fetcher retrieves Launchpad resources, live or offline.
	Fetcher launchpad.Fetcher
	// BaseURL and BugsBaseURL default to the production API roots.
	BaseURL     string
	BugsBaseURL string
	// Project is the project whose bug tasks are listed.
	Project string
	// Status filters the task list; empty lists every state.
	Status launchpad.Status
	// Gemini answers chat prompts and one-shot generations.
	Gemini *ai.Client
	// Editor is the external editor command for the response buffer.
	Editor string
	// SpinnerLabelIndex selects the initial bottom bar label.
	SpinnerLabelIndex int
}

// App owns the UI state and the channels binding background tasks to the
// event loop.
type App struct {
	screen tcell.Screen

	currentScreen Screen
	activePanel   Panel
	quit          bool

	project string
	status  launchpad.Status
	editor  string

	gemini *ai.Client

	lpMessages chan Message
	prompts    chan string
	replies    chan string

	chatMonitor *TaskMonitor

	refreshGeneration atomic.Int64
	loadingTasks      bool
	fetchingBug       bool
	aiBusy            bool

	response     *textBuffer
	renderedText string

	table    *bugTable
	respView *tview.TextView
	compose  *tview.TextArea
	spinner  *spinner

	// Fetch and generation hooks, overridable in tests.
	fetchTasks func() ([]launchpad.BugTask, error)
	fetchBug   func(id uint) (launchpad.Bug, error)
	generate   func(prompt string) (string, error)
}

// NewApp creates the application state. The terminal is not touched until
// Run.
func NewApp(opts Options) *App {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = launchpad.DefaultBaseURL
	}
	bugsBaseURL := opts.BugsBaseURL
	if bugsBaseURL == "" {
		bugsBaseURL = launchpad.DefaultBugsBaseURL
	}

	respView := tview.NewTextView()
	respView.SetBorder(true)
	respView.SetDynamicColors(true)
	respView.SetWordWrap(true)
	respView.SetScrollable(true)

	compose := tview.NewTextArea()
	compose.SetBorder(true)
	compose.SetTitle(" Reply ")
	compose.SetPlaceholder("Write a prompt for the triage chat...")

	a := &App{
		currentScreen: ScreenBugList,
		activePanel:   PanelLeft,
		project:       opts.Project,
		status:        opts.Status,
		editor:        opts.Editor,
		gemini:        opts.Gemini,
		lpMessages:    make(chan Message, messageBuffer),
		prompts:       make(chan string, messageBuffer),
		replies:       make(chan string, messageBuffer),
		response:      &textBuffer{text: initialResponseText},
		table:         newBugTable(),
		respView:      respView,
		compose:       compose,
		spinner:       newSpinner(opts.SpinnerLabelIndex),
	}

	a.fetchTasks = func() ([]launchpad.BugTask, error) {
		return launchpad.FetchProjectBugTasks(opts.Fetcher, baseURL, opts.Project, opts.Status)
	}
	a.fetchBug = func(id uint) (launchpad.Bug, error) {
		return launchpad.FetchBug(opts.Fetcher, bugsBaseURL, id)
	}
	a.generate = func(prompt string) (string, error) {
		return opts.Gemini.GenerateText(context.Background(), prompt)
	}

	return a
}

// Run owns the terminal until the user quits, a Launchpad fetch fails, or
// the chat task stops. Per tick it renders, drains at most one message per
// channel, polls the chat monitor, and waits for input no longer than the
// remaining tick budget.
func (a *App) Run() error {
	if a.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		a.screen = screen
	}
	defer a.screen.Fini()

	session := ai.NewChatSession(a.gemini, ai.TriageInstructions)
	a.chatMonitor = startChat(session, a.prompts, a.replies)

	a.refreshTasks()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)
	defer close(quit)

	lastTick := time.Now()
	for !a.quit {
		a.draw()

		if err := a.drainLaunchpadMessage(); err != nil {
			return err
		}
		a.drainChatReply()

		if done, err := a.chatMonitor.Poll(); done {
			if err != nil {
				logger.ErrorWithErr(err, "tui.app: chat task stopped")
			} else {
				logger.Warning("tui.app: chat task stopped")
			}
			break
		}

		timeout := tickRate - time.Since(lastTick)
		if timeout < 0 {
			timeout = 0
		}
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.handleEvent(ev)
		case <-time.After(timeout):
		}
		if time.Since(lastTick) >= tickRate {
			lastTick = time.Now()
		}
	}
	return nil
}

// SpinnerLabelIndex reports the current bottom bar label index, so callers
// can persist it across runs.
func (a *App) SpinnerLabelIndex() int {
	return a.spinner.labelIndex
}

// refreshTasks spawns a list fetch. The generation stamp lets the loop drop
// results that a newer refresh has superseded.
func (a *App) refreshTasks() {
	a.loadingTasks = true
	gen := a.refreshGeneration.Add(1)
	fetch := a.fetchTasks
	logger.Info("tui.app: refreshing bug tasks project=%s generation=%d", a.project, gen)
	go func() {
		tasks, err := fetch()
		if err != nil {
			post(a.lpMessages, FetchFailedMessage{Err: err})
			return
		}
		post(a.lpMessages, TaskListMessage{Generation: gen, Tasks: tasks})
	}()
}

// fetchBugDetails spawns a single-record fetch.
func (a *App) fetchBugDetails(id uint) {
	a.fetchingBug = true
	fetch := a.fetchBug
	logger.Info("tui.app: fetching bug details id=%d", id)
	go func() {
		bug, err := fetch(id)
		if err != nil {
			post(a.lpMessages, BugFetchFailedMessage{Err: err})
			return
		}
		post(a.lpMessages, BugMessage{Bug: bug})
	}()
}

// askAssistant runs a one-shot triage of the selected bug: fetch the full
// record, build the triage prompt, send it to the model outside the chat
// session. The reply replaces the buffer; an error is rendered in its place
// and the application keeps running. The task posts AIDoneMessage on its way
// out so the loop can clear the in-flight flag.
func (a *App) askAssistant() {
	if a.aiBusy {
		return
	}
	task := a.table.Selected()
	if task == nil {
		return
	}
	id := bugIDFromLink(task.BugLink)
	if id == 0 {
		return
	}

	a.aiBusy = true
	status := task.Status
	importance := task.Importance
	fetch := a.fetchBug
	generate := a.generate
	buffer := a.response
	messages := a.lpMessages
	logger.Info("tui.app: one-shot triage requested id=%d", id)
	go func() {
		defer post(messages, AIDoneMessage{})
		bug, err := fetch(id)
		if err != nil {
			logger.ErrorWithErr(err, "tui.app: triage bug fetch failed id=%d", id)
			buffer.Set(fmt.Sprintf("Error while fetching the response: %v", err))
			return
		}
		prompt := ai.TriagePrompt(ai.BugReport{
			Title:       bug.Title,
			Description: bug.Description,
			Status:      status,
			Importance:  importance,
			Tags:        bug.Tags,
		})
		reply, err := generate(prompt)
		if err != nil {
			logger.ErrorWithErr(err, "tui.app: triage generation failed id=%d", id)
			buffer.Set(fmt.Sprintf("Error while fetching the response: %v", err))
			return
		}
		buffer.Set(reply)
	}()
}

// sendPrompt hands the composed text to the chat goroutine without blocking
// the loop.
func (a *App) sendPrompt() {
	prompt := strings.TrimSpace(a.compose.GetText())
	if prompt == "" {
		return
	}
	select {
	case a.prompts <- prompt:
		a.compose.SetText("", false)
		a.response.Set(initialResponseText)
		logger.Info("tui.app: prompt sent to chat")
	default:
		logger.Warning("tui.app: prompt channel full, dropping prompt")
	}
}

// drainLaunchpadMessage consumes at most one fetch result. A fetch failure
// is returned so the loop ends.
func (a *App) drainLaunchpadMessage() error {
	select {
	case msg := <-a.lpMessages:
		switch m := msg.(type) {
		case TaskListMessage:
			a.applyTaskList(m)
		case BugMessage:
			a.applyBug(m)
		case FetchFailedMessage:
			return m.Err
		case BugFetchFailedMessage:
			a.fetchingBug = false
			logger.ErrorWithErr(m.Err, "tui.app: bug details fetch failed")
			a.response.Set(fmt.Sprintf("Error while fetching the response: %v", m.Err))
			a.respView.ScrollTo(0, 0)
		case AIDoneMessage:
			a.aiBusy = false
			a.respView.ScrollTo(0, 0)
		}
	default:
	}
	return nil
}

// drainChatReply consumes at most one chat response.
func (a *App) drainChatReply() {
	select {
	case reply := <-a.replies:
		logger.Info("tui.app: chat response received")
		a.response.Set(reply)
		a.respView.ScrollTo(0, 0)
	default:
	}
}

func (a *App) applyTaskList(m TaskListMessage) {
	if m.Generation != a.refreshGeneration.Load() {
		logger.Debug("tui.app: dropping stale task list generation=%d current=%d",
			m.Generation, a.refreshGeneration.Load())
		return
	}
	a.loadingTasks = false
	a.table.SetTasks(m.Tasks)
	logger.Info("tui.app: loaded %d bug tasks project=%s", len(m.Tasks), a.project)
}

func (a *App) applyBug(m BugMessage) {
	a.fetchingBug = false
	a.response.Set(fmt.Sprintf("# Bug #%d: %s\n\n%s", m.Bug.ID, m.Bug.Title, m.Bug.Description))
	a.respView.ScrollTo(0, 0)
	logger.Debug("tui.app: bug details loaded id=%d", m.Bug.ID)
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		a.quit = true
		return
	}

	// The compose area owns the keyboard while focused.
	if a.currentScreen == ScreenBugEditing && a.activePanel == PanelRight {
		a.handleComposeKey(ev)
		return
	}

	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'q':
			a.quit = true
			return
		case 's':
			a.spinner.toggle()
			return
		}
	}

	switch a.currentScreen {
	case ScreenBugList:
		if ev.Key() == tcell.KeyTab {
			a.togglePanel()
			return
		}
		if a.activePanel == PanelLeft {
			a.handleTableKey(ev)
		} else {
			a.handleResponseKey(ev)
		}
	case ScreenBugEditing:
		switch ev.Key() {
		case tcell.KeyEscape:
			a.currentScreen = ScreenBugList
			a.activePanel = PanelRight
		case tcell.KeyTab:
			a.togglePanel()
		default:
			a.handleResponseKey(ev)
		}
	}
}

func (a *App) handleTableKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		a.table.Previous()
	case tcell.KeyDown:
		a.table.Next()
	case tcell.KeyPgUp:
		a.table.PageUp()
	case tcell.KeyPgDn:
		a.table.PageDown()
	case tcell.KeyHome:
		a.table.First()
	case tcell.KeyEnd:
		a.table.Last()
	case tcell.KeyEnter:
		if task := a.table.Selected(); task != nil {
			a.response.Set(task.BugLink)
			a.respView.ScrollTo(0, 0)
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'r':
			a.refreshTasks()
		case 'd':
			if row := a.table.SelectedRow(); row != nil && row.id != 0 {
				a.fetchBugDetails(row.id)
			}
		}
	}
}

func (a *App) handleResponseKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		a.scrollResponse(-1)
	case tcell.KeyDown:
		a.scrollResponse(1)
	case tcell.KeyPgUp:
		a.scrollResponse(-tablePageSize)
	case tcell.KeyPgDn:
		a.scrollResponse(tablePageSize)
	case tcell.KeyHome:
		a.respView.ScrollTo(0, 0)
	case tcell.KeyEnd:
		a.respView.ScrollToEnd()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'r':
			a.currentScreen = ScreenBugEditing
			a.activePanel = PanelLeft
		case 'a':
			a.askAssistant()
		case 'e':
			a.openEditor()
		}
	}
}

func (a *App) handleComposeKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.currentScreen = ScreenBugList
		a.activePanel = PanelRight
	case tcell.KeyTab:
		a.togglePanel()
	case tcell.KeyEnter:
		a.sendPrompt()
	default:
		if handler := a.compose.InputHandler(); handler != nil {
			handler(ev, func(tview.Primitive) {})
		}
	}
}

func (a *App) togglePanel() {
	if a.activePanel == PanelLeft {
		a.activePanel = PanelRight
	} else {
		a.activePanel = PanelLeft
	}
}

func (a *App) scrollResponse(delta int) {
	row, _ := a.respView.GetScrollOffset()
	row += delta
	if row < 0 {
		row = 0
	}
	a.respView.ScrollTo(row, 0)
}

func (a *App) openEditor() {
	edited, err := editInExternalEditor(a.screen, a.editor, a.response.Get())
	if err != nil {
		logger.ErrorWithErr(err, "tui.app: editor failed")
		return
	}
	a.response.Set(edited)
	a.respView.ScrollTo(0, 0)
}

// renderMarkdown converts markdown to ANSI for the response view. On any
// rendering problem the raw text is shown instead.
func renderMarkdown(text string) string {
	rendered, err := glamour.Render(text, "dark")
	if err != nil {
		return text
	}
	return rendered
}

// syncResponseView re-renders the response view when the shared buffer
// changed since the last draw.
func (a *App) syncResponseView() {
	text := a.response.Get()
	if text == a.renderedText {
		return
	}
	a.renderedText = text
	a.respView.Clear()
	fmt.Fprint(tview.ANSIWriter(a.respView), renderMarkdown(text))
}

func (a *App) draw() {
	screen := a.screen
	screen.Clear()

	width, height := screen.Size()
	if width < 2 || height < 2 {
		screen.Show()
		return
	}
	mainHeight := height - 1
	half := width / 2

	a.syncResponseView()
	a.updateTitles()

	switch a.currentScreen {
	case ScreenBugList:
		a.table.view.SetRect(0, 0, half, mainHeight)
		a.respView.SetRect(half, 0, width-half, mainHeight)
		a.table.view.SetBorderColor(a.panelColor(PanelLeft))
		a.respView.SetBorderColor(a.panelColor(PanelRight))
		a.table.view.Draw(screen)
		a.respView.Draw(screen)
	case ScreenBugEditing:
		a.respView.SetRect(0, 0, half, mainHeight)
		a.compose.SetRect(half, 0, width-half, mainHeight)
		a.respView.SetBorderColor(a.panelColor(PanelLeft))
		a.compose.SetBorderColor(a.panelColor(PanelRight))
		a.respView.Draw(screen)
		a.compose.Draw(screen)
	}

	a.drawBottomBar(width, height)
	screen.Show()
}

func (a *App) panelColor(p Panel) tcell.Color {
	if a.activePanel == p {
		return tcell.ColorGreen
	}
	return tcell.ColorWhite
}

func (a *App) updateTitles() {
	statusLabel := a.status.Display()
	if statusLabel == "" {
		statusLabel = "any"
	}
	selected := "-"
	if idx := a.table.SelectedIndex(); idx >= 0 {
		selected = fmt.Sprintf("%d", idx+1)
	}
	a.table.view.SetTitle(fmt.Sprintf(" Bugs in status '%s' %s/%d ", statusLabel, selected, a.table.Count()))

	title := " Gemini Response "
	if row := a.table.SelectedRow(); row != nil {
		title = fmt.Sprintf(" %d-%s ", row.id, truncate(row.title, 40))
	}
	a.respView.SetTitle(title)
}

func (a *App) drawBottomBar(width, height int) {
	y := height - 1
	for x := 0; x < width; x++ {
		a.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}

	if a.spinner.enabled || a.loadingTasks || a.fetchingBug || a.aiBusy {
		a.spinner.advance()
	}

	hint := fmt.Sprintf("[aqua::b]%s[-:-:-]", a.keyHints())
	tview.Print(a.screen, hint, 0, y, width, tview.AlignCenter, tcell.ColorWhite)

	left := fmt.Sprintf("[magenta]%s[-] [aqua]%s[-]", a.spinner.current(), a.spinner.label())
	tview.Print(a.screen, left, 0, y, width, tview.AlignLeft, tcell.ColorWhite)

	clock := time.Now().Format("15:04:05")
	tview.Print(a.screen, clock, 0, y, width, tview.AlignRight, tcell.ColorWhite)
}

func (a *App) keyHints() string {
	switch {
	case a.currentScreen == ScreenBugList && a.activePanel == PanelLeft:
		return "Tab selection, ↑↓ PgUp/PgDn Home/End to navigate, Enter to pick, 'd' for details, 'r' to refresh"
	case a.currentScreen == ScreenBugEditing && a.activePanel == PanelRight:
		return "Enter to send, Esc to go back, Tab selection"
	default:
		return "Tab selection, ↑↓ PgUp/PgDn Home/End to navigate, 'e' to edit, 'a' for AI generation, 'r' to reply to this bug"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
