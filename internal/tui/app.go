package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/tempo/internal/app"
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/state"
	"github.com/runoshun/tempo/internal/usecase"
	"github.com/runoshun/tempo/internal/view"
)

// tickInterval is how often running timers are redrawn.
const tickInterval = time.Second

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container   *app.Container
	err         error
	events      chan state.Event
	done        chan struct{}
	unsubscribe func()
	stopWatch   func()

	// State (slices and maps - contain pointers)
	tasks []*domain.Task
	views map[domain.View]int

	// Components (structs with pointers)
	keys           KeyMap
	styles         Styles
	help           help.Model
	detailViewport viewport.Model

	// Input state (large structs)
	titleInput  textinput.Model
	searchInput textinput.Model
	userInput   textinput.Model

	// Filter state
	filters     domain.Filters
	now         time.Time
	today       domain.Date
	taskType    domain.TaskType
	sortBy      domain.SortBy
	timerFilter domain.TimerFilter
	notice      string

	// Numeric state (smaller types last)
	mode          Mode
	confirmAction ConfirmAction
	confirmTaskID string
	cursor        int
	width         int
	height        int
}

// New creates a new TUI Model with the given container.
// The model subscribes to the entity store; call Close when done.
func New(c *app.Container) *Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	si := textinput.New()
	si.Placeholder = "Search titles..."
	si.CharLimit = 100

	ui := textinput.New()
	ui.Placeholder = "User id (empty to sign out)"
	ui.CharLimit = 100

	m := &Model{
		container:   c,
		events:      make(chan state.Event, 1),
		done:        make(chan struct{}),
		keys:        DefaultKeyMap(),
		styles:      DefaultStyles(),
		help:        help.New(),
		titleInput:  ti,
		searchInput: si,
		userInput:   ui,
		filters:     domain.DefaultFilters(),
		taskType:    domain.TaskTypeRegular,
		sortBy:      domain.SortByDueDate,
		timerFilter: domain.TimerAll,
		mode:        ModeNormal,
	}

	// A full buffer already means a refresh is pending, so extra events are dropped.
	m.unsubscribe = c.State.Subscribe(func(ev state.Event) {
		select {
		case m.events <- ev:
		default:
		}
	})
	m.stopWatch = c.WatchIdentity(context.Background())
	m.refresh()
	return m
}

// Close stops listening to entity store events.
func (m *Model) Close() {
	if m.unsubscribe == nil {
		return
	}
	m.stopWatch()
	m.unsubscribe()
	m.unsubscribe = nil
	close(m.done)
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.tick(),
	)
}

// waitForEvent returns a command that delivers the next entity store event.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return MsgStateChanged{Event: ev}
		case <-m.done:
			return nil
		}
	}
}

// tick returns a command that fires the next timer refresh.
func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return MsgTick{Time: t}
	})
}

// refresh re-runs the view pipeline over the entity store.
func (m *Model) refresh() {
	m.now = m.container.Clock.Now()
	in := usecase.ListTasksInput{
		Filters: m.filters,
		Type:    m.taskType,
		SortBy:  m.sortBy,
	}
	if m.taskType == domain.TaskTypeContinuous {
		in.Filters.View = domain.ViewAll
		in.Status = m.timerFilter
	}
	out, err := m.container.ListTasksUseCase().Execute(context.Background(), in)
	if err != nil {
		m.err = err
		return
	}
	m.tasks = out.Tasks
	m.views = out.Views
	m.today = out.Today
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

// selectTask moves the cursor to the task with the given id, if visible.
func (m *Model) selectTask(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// hasActiveTimer reports whether any visible task has a running timer.
func (m *Model) hasActiveTimer() bool {
	for _, t := range m.tasks {
		if t.IsActive {
			return true
		}
	}
	return false
}

// switchPartition toggles between regular and continuous tasks.
func (m *Model) switchPartition() {
	if m.taskType == domain.TaskTypeRegular {
		m.taskType = domain.TaskTypeContinuous
	} else {
		m.taskType = domain.TaskTypeRegular
	}
	m.cursor = 0
	m.refresh()
}

// cycleView advances the view, or the timer state filter on the timers tab.
func (m *Model) cycleView() {
	if m.taskType == domain.TaskTypeContinuous {
		filters := []domain.TimerFilter{domain.TimerAll, domain.TimerActive, domain.TimerPaused, domain.TimerCompleted}
		m.timerFilter = next(filters, m.timerFilter)
	} else {
		m.filters.View = next(domain.AllViews(), m.filters.View)
	}
	m.cursor = 0
	m.refresh()
}

// cyclePriority advances the priority filter: any, high, medium, low.
func (m *Model) cyclePriority() {
	options := []string{""}
	for _, p := range domain.AllPriorities() {
		options = append(options, string(p))
	}
	current := ""
	if m.filters.Priority != nil {
		current = string(*m.filters.Priority)
	}
	if p := next(options, current); p == "" {
		m.filters.Priority = nil
	} else {
		priority := domain.Priority(p)
		m.filters.Priority = &priority
	}
	m.cursor = 0
	m.refresh()
}

// cycleCategory advances the category filter through every category.
func (m *Model) cycleCategory() {
	options := []string{""}
	for _, c := range m.container.State.Categories() {
		options = append(options, c.ID)
	}
	m.filters.CategoryID = next(options, m.filters.CategoryID)
	m.cursor = 0
	m.refresh()
}

// cycleSort advances the sort key.
func (m *Model) cycleSort() {
	m.sortBy = next(domain.AllSortKeys(), m.sortBy)
	m.refresh()
}

// next returns the element after current, wrapping around.
// An unknown current selects the first element.
func next[T comparable](options []T, current T) T {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// categoryLabel returns the name of the category filter, or "any".
func (m *Model) categoryLabel() string {
	if m.filters.CategoryID == "" {
		return "any"
	}
	if c := m.container.State.Category(m.filters.CategoryID); c != nil {
		return c.Name
	}
	return "-"
}

// createTask returns a command that creates a new task in the current partition.
func (m *Model) createTask(title string) tea.Cmd {
	in := usecase.NewTaskInput{
		Title:      strings.TrimSpace(title),
		Type:       m.taskType,
		CategoryID: m.filters.CategoryID,
	}
	if m.filters.Priority != nil {
		in.Priority = *m.filters.Priority
	}
	if m.taskType == domain.TaskTypeRegular && m.filters.View == domain.ViewToday {
		today := domain.DateOf(m.container.Clock.Now())
		in.DueDate = &today
	}
	return func() tea.Msg {
		out, err := m.container.NewTaskUseCase().Execute(context.Background(), in)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{TaskID: out.Task.ID, Title: out.Task.Title}
	}
}

// switchUser returns a command that makes userID the current user.
func (m *Model) switchUser(userID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.container.SwitchUser(context.Background(), userID); err != nil {
			return MsgError{Err: err}
		}
		return MsgUserSwitched{UserID: m.container.Identity.CurrentUser()}
	}
}

// toggleTimer returns a command that starts or stops a task timer.
func (m *Model) toggleTimer(task *domain.Task) tea.Cmd {
	if task.IsActive {
		return m.stopTimer(task.ID)
	}
	return func() tea.Msg {
		_, err := m.container.StartTaskUseCase().Execute(
			context.Background(),
			usecase.StartTaskInput{TaskID: task.ID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTimerStarted{TaskID: task.ID}
	}
}

// stopTimer returns a command that stops a task timer.
func (m *Model) stopTimer(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.StopTaskUseCase().Execute(
			context.Background(),
			usecase.StopTaskInput{TaskID: taskID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTimerStopped{TaskID: taskID, Minutes: out.Minutes}
	}
}

// toggleTask returns a command that flips a task's completion.
func (m *Model) toggleTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ToggleTaskUseCase().Execute(
			context.Background(),
			usecase.ToggleTaskInput{TaskID: taskID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskToggled{TaskID: taskID, Completed: out.Task.Completed, Stopped: out.Stopped}
	}
}

// deleteTask returns a command that deletes a task.
func (m *Model) deleteTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.container.DeleteTaskUseCase().Execute(
			context.Background(),
			usecase.DeleteTaskInput{TaskID: taskID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{TaskID: taskID}
	}
}

// clearCompleted returns a command that deletes the completed tasks of the partition.
func (m *Model) clearCompleted() tea.Cmd {
	typ := m.taskType
	return func() tea.Msg {
		out, err := m.container.ClearCompletedUseCase().Execute(
			context.Background(),
			usecase.ClearCompletedInput{Type: typ},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksCleared{Count: len(out.Deleted)}
	}
}

// moveTask returns a command that swaps a task with its neighbor in manual order.
// It returns nil when the task is already at the edge.
func (m *Model) moveTask(taskID string, delta int) tea.Cmd {
	partition := m.container.State.TasksByType(m.taskType)
	ids := make([]string, len(partition))
	pos := -1
	for i, t := range partition {
		ids[i] = t.ID
		if t.ID == taskID {
			pos = i
		}
	}
	target := pos + delta
	if pos < 0 || target < 0 || target >= len(ids) {
		return nil
	}
	ids[pos], ids[target] = ids[target], ids[pos]

	typ := m.taskType
	return func() tea.Msg {
		_, err := m.container.ReorderTasksUseCase().Execute(
			context.Background(),
			usecase.ReorderTasksInput{Type: typ, IDs: ids},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksReordered{TaskID: taskID}
	}
}

func (m *Model) initDetailViewport() {
	width := m.width - 12
	height := m.height - 10
	if width < 40 {
		width = 40
	}
	if height < 10 {
		height = 10
	}
	m.detailViewport = viewport.New(width, height)
	m.detailViewport.SetContent(m.detailContent())
}

// detailContent renders the selected task's fields, subtasks and sessions.
func (m *Model) detailContent() string {
	task := m.SelectedTask()
	if task == nil {
		return "No task selected"
	}

	var lines []string
	field := func(label, value string) {
		lines = append(lines, m.styles.DetailLabel.Render(label)+m.styles.DetailValue.Render(value))
	}

	lines = append(lines, m.styles.DetailTitle.Render(fmt.Sprintf("Task %s", domain.ShortID(task.ID))))
	lines = append(lines, m.styles.TaskTitle.Bold(true).Render(task.Title), "")

	field("Type", string(task.Type))
	field("Priority", task.Priority.Display())
	if c := m.container.State.Category(task.CategoryID); c != nil {
		field("Category", CategoryStyle(c).Render(c.Name))
	}
	if task.DueDate != nil {
		field("Due", task.DueDate.String())
	}
	if task.ReminderAt != nil {
		field("Reminder", task.ReminderAt.Local().Format("2006-01-02 15:04"))
	}
	field("Created", task.Created.Local().Format("2006-01-02 15:04"))

	if task.IsContinuous() {
		status := task.ContinuousStatus()
		field("Status", m.styles.StatusStyle(status).Render(status.Display()))
		if task.DurationMinutes > 0 {
			field("Planned", view.FormatMinutes(task.DurationMinutes))
		}
		field("Tracked", view.FormatMinutes(task.TotalTimeSpentMinutes))
		if task.IsActive {
			field("Running", fmt.Sprintf("%s (%.0f%%)", view.FormatDuration(task.Elapsed(m.now)), task.Progress(m.now)))
		}
	} else if task.Completed && task.CompletedAt != nil {
		field("Completed", task.CompletedAt.Local().Format("2006-01-02 15:04"))
	}

	if task.Description != "" {
		lines = append(lines, m.styles.DetailDesc.Render(task.Description))
	}
	if task.Notes != "" {
		lines = append(lines, "", m.styles.DetailLabel.Render("Notes"), task.Notes)
	}

	if len(task.Subtasks) > 0 {
		done, total := task.SubtaskProgress()
		lines = append(lines, "", m.styles.DetailLabel.Render(fmt.Sprintf("Subtasks %d/%d", done, total)))
		for _, st := range task.Subtasks {
			mark := "[ ]"
			if st.Completed {
				mark = "[x]"
			}
			lines = append(lines, "  "+mark+" "+st.Title)
		}
	}

	if task.IsContinuous() {
		sessions := m.container.State.Sessions(task.ID)
		if len(sessions) > 0 {
			lines = append(lines, "", m.styles.DetailLabel.Render("Sessions"))
			for _, s := range sessions {
				end, length := "running", ""
				if s.EndTime != nil {
					end = s.EndTime.Local().Format("15:04")
				}
				if s.DurationMinutes != nil {
					length = view.FormatMinutes(*s.DurationMinutes)
				}
				lines = append(lines, fmt.Sprintf("  %s - %s  %s",
					s.StartTime.Local().Format("2006-01-02 15:04"), end, length))
			}
		}
	}

	return strings.Join(lines, "\n")
}
