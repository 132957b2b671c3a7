package tui

import (
	"context"
	"time"

	"github.com/roeyazroel/launchpad-tui/internal/launchpad"
	"github.com/roeyazroel/launchpad-tui/internal/logger"
)

// messageBuffer is the capacity of the channels between background tasks
// and the event loop.
const messageBuffer = 5

// Message is one tagged result produced by a background fetch task and
// consumed exactly once by the event loop.
type Message interface {
	isMessage()
}

// TaskListMessage carries the result of a bug task list fetch. Generation
// identifies which refresh produced it; the loop drops results superseded
// by a newer refresh.
type TaskListMessage struct {
	Generation int64
	Tasks      []launchpad.BugTask
}

// BugMessage carries one full bug record.
type BugMessage struct {
	Bug launchpad.Bug
}

// FetchFailedMessage signals a failed bug task list fetch. The list is the
// application's reason to exist, so the loop treats it as fatal.
type FetchFailedMessage struct {
	Err error
}

// BugFetchFailedMessage signals a failed single-bug fetch. The loop renders
// it into the response buffer and keeps running.
type BugFetchFailedMessage struct {
	Err error
}

// AIDoneMessage signals that a one-shot generation has finished. The reply
// (or a rendered error) lands in the shared buffer from the task itself;
// this message only clears the in-flight flag.
type AIDoneMessage struct{}

func (TaskListMessage) isMessage()       {}
func (BugMessage) isMessage()            {}
func (FetchFailedMessage) isMessage()    {}
func (BugFetchFailedMessage) isMessage() {}
func (AIDoneMessage) isMessage()         {}

// post delivers msg without blocking. A full or abandoned channel drops the
// message with a warning; the sending task has nothing else to do with it.
func post(ch chan<- Message, msg Message) {
	select {
	case ch <- msg:
	default:
		logger.Warning("tui.messages: channel full, dropping %T", msg)
	}
}

// TaskHandle pairs a completion signal with a task's terminal error. The
// task goroutine calls Finish exactly once on its way out.
type TaskHandle struct {
	done chan struct{}
	err  error
}

// NewTaskHandle creates a handle for a task that has not finished yet.
func NewTaskHandle() *TaskHandle {
	return &TaskHandle{done: make(chan struct{})}
}

// Finish records the terminal error and marks the task complete. Only the
// task goroutine calls it, and only once.
func (h *TaskHandle) Finish(err error) {
	h.err = err
	close(h.done)
}

// TaskMonitor checks a long-lived task for completion from a synchronous
// loop. Poll never blocks and reports the outcome exactly once; after that
// the monitor is spent.
type TaskMonitor struct {
	handle *TaskHandle
	spent  bool
}

// NewTaskMonitor creates a monitor over handle.
func NewTaskMonitor(handle *TaskHandle) *TaskMonitor {
	return &TaskMonitor{handle: handle}
}

// Poll reports whether the task has completed, and its terminal error the
// first time completion is observed.
func (m *TaskMonitor) Poll() (bool, error) {
	if m.spent {
		return false, nil
	}
	select {
	case <-m.handle.done:
		m.spent = true
		return true, m.handle.err
	default:
		return false, nil
	}
}

// chatCooldown spaces consecutive chat calls apart.
const chatCooldown = 500 * time.Millisecond

// promptSender is the slice of the chat session the chat goroutine needs.
type promptSender interface {
	SendMessage(ctx context.Context, prompt string) (string, error)
}

// startChat launches the long-lived triage chat goroutine. It reads prompts
// until the channel closes or a model call fails, delivering each reply on
// replies. The returned monitor reports the goroutine's exit to the event
// loop.
func startChat(session promptSender, prompts <-chan string, replies chan<- string) *TaskMonitor {
	handle := NewTaskHandle()
	go func() {
		logger.Info("tui.chat: chat started")
		var exitErr error
		for prompt := range prompts {
			logger.Debug("tui.chat: prompt received")
			reply, err := session.SendMessage(context.Background(), prompt)
			if err != nil {
				logger.ErrorWithErr(err, "tui.chat: model call failed")
				exitErr = err
				break
			}
			select {
			case replies <- reply:
			default:
				logger.Warning("tui.chat: replies channel full, dropping reply")
			}
			time.Sleep(chatCooldown)
		}
		logger.Info("tui.chat: chat terminated")
		handle.Finish(exitErr)
	}()
	return NewTaskMonitor(handle)
}
