package tui

import (
	"time"

	"github.com/runoshun/tempo/internal/state"
)

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgStateChanged is sent when the entity store reports a mutation.
type MsgStateChanged struct {
	Event state.Event
}

func (MsgStateChanged) sealed() {}

// MsgTick is sent every second to refresh running timers.
type MsgTick struct {
	Time time.Time
}

func (MsgTick) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	TaskID string
	Title  string
}

func (MsgTaskCreated) sealed() {}

// MsgTimerStarted is sent when a task timer is started.
type MsgTimerStarted struct {
	TaskID string
}

func (MsgTimerStarted) sealed() {}

// MsgTimerStopped is sent when a task timer is stopped.
type MsgTimerStopped struct {
	TaskID  string
	Minutes int
}

func (MsgTimerStopped) sealed() {}

// MsgTaskToggled is sent when a task's completion is flipped.
type MsgTaskToggled struct {
	TaskID    string
	Completed bool
	Stopped   bool
}

func (MsgTaskToggled) sealed() {}

// MsgTaskDeleted is sent when a task is deleted.
type MsgTaskDeleted struct {
	TaskID string
}

func (MsgTaskDeleted) sealed() {}

// MsgTasksCleared is sent when completed tasks are deleted.
type MsgTasksCleared struct {
	Count int
}

func (MsgTasksCleared) sealed() {}

// MsgTasksReordered is sent after a manual reorder.
type MsgTasksReordered struct {
	TaskID string
}

func (MsgTasksReordered) sealed() {}

// MsgUserSwitched is sent after the current user changed.
type MsgUserSwitched struct {
	UserID string
}

func (MsgUserSwitched) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearError is sent to clear the current error message.
type MsgClearError struct{}

func (MsgClearError) sealed() {}
