package tui

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPost_NeverBlocks(t *testing.T) {
	ch := make(chan Message, 1)

	post(ch, AIDoneMessage{})
	// The channel is full now; a second post must drop, not block.
	done := make(chan struct{})
	go func() {
		post(ch, AIDoneMessage{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("post blocked on a full channel")
	}

	if len(ch) != 1 {
		t.Errorf("len(ch) = %d, want 1", len(ch))
	}
}

func TestTaskMonitor_PollLifecycle(t *testing.T) {
	handle := NewTaskHandle()
	monitor := NewTaskMonitor(handle)

	if done, err := monitor.Poll(); done || err != nil {
		t.Errorf("Poll() before completion = (%v, %v), want (false, nil)", done, err)
	}

	wantErr := errors.New("model unreachable")
	handle.Finish(wantErr)

	done, err := monitor.Poll()
	if !done {
		t.Fatal("Poll() after completion = false, want true")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Poll() error = %v, want %v", err, wantErr)
	}

	// The outcome is reported exactly once; after that the monitor is spent.
	if done, err := monitor.Poll(); done || err != nil {
		t.Errorf("Poll() after outcome = (%v, %v), want (false, nil)", done, err)
	}
}

// scriptedSender answers every prompt with an echo, or fails every call.
type scriptedSender struct {
	err error
}

func (s *scriptedSender) SendMessage(_ context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "echo: " + prompt, nil
}

func waitForCompletion(t *testing.T, monitor *TaskMonitor) error {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if done, err := monitor.Poll(); done {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("chat task did not complete in time")
	return nil
}

func TestStartChat_DeliversReplies(t *testing.T) {
	prompts := make(chan string, messageBuffer)
	replies := make(chan string, messageBuffer)
	monitor := startChat(&scriptedSender{}, prompts, replies)

	prompts <- "is this bug complete?"
	select {
	case reply := <-replies:
		if reply != "echo: is this bug complete?" {
			t.Errorf("reply = %q, want the echoed prompt", reply)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reply delivered")
	}

	close(prompts)
	if err := waitForCompletion(t, monitor); err != nil {
		t.Errorf("chat exit error = %v, want nil", err)
	}
}

func TestStartChat_UnreadRepliesAreDropped(t *testing.T) {
	prompts := make(chan string, messageBuffer)
	// No reader on replies: the loop has exited. The chat must drop the
	// reply instead of blocking forever.
	replies := make(chan string)
	monitor := startChat(&scriptedSender{}, prompts, replies)

	prompts <- "anyone there?"
	close(prompts)

	if err := waitForCompletion(t, monitor); err != nil {
		t.Errorf("chat exit error = %v, want nil", err)
	}
}

func TestStartChat_ModelFailureEndsTask(t *testing.T) {
	prompts := make(chan string, messageBuffer)
	replies := make(chan string, messageBuffer)
	wantErr := errors.New("quota exceeded")
	monitor := startChat(&scriptedSender{err: wantErr}, prompts, replies)

	prompts <- "anything"
	if err := waitForCompletion(t, monitor); !errors.Is(err, wantErr) {
		t.Errorf("chat exit error = %v, want %v", err, wantErr)
	}
	if len(replies) != 0 {
		t.Errorf("len(replies) = %d, want 0", len(replies))
	}
}
