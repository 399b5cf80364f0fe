package server

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	log "github.com/sirupsen/logrus"
)

// AssistantManager supervises the voice assistant subprocess.
//
// At most one assistant process runs at a time. Start is rejected while a
// previous process is still alive; Stop kills the process and reaps it.
// The manager notices on its own when the process exits.
type AssistantManager struct {
	mu sync.Mutex

	// binary is the voice assistant executable to launch.
	binary string

	cmd     *exec.Cmd
	done    chan struct{}
	lastErr error
}

// NewAssistantManager creates a manager that launches the given binary.
func NewAssistantManager(binary string) *AssistantManager {
	return &AssistantManager{binary: binary}
}

// Running reports whether the assistant process is currently alive.
func (m *AssistantManager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running()
}

func (m *AssistantManager) running() bool {
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Start launches the assistant for a profile.
//
// The profile ID is passed to the subprocess as a flag. Starting while an
// assistant is already running is an error; the caller must stop the old
// one first.
func (m *AssistantManager) Start(profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running() {
		return fmt.Errorf("assistant already running (pid %d)", m.cmd.Process.Pid)
	}

	cmd := exec.Command(m.binary, "--profile", profileID)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start assistant: %w", err)
	}

	done := make(chan struct{})
	m.cmd = cmd
	m.done = done
	m.lastErr = nil

	go func() {
		err := cmd.Wait()
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
		close(done)
		if err != nil {
			log.Warnf("assistant process exited: %v", err)
		} else {
			log.Info("assistant process exited")
		}
	}()

	log.WithField("profile_id", profileID).Infof("assistant started (pid %d)", cmd.Process.Pid)
	return nil
}

// Stop terminates the running assistant.
//
// Stopping when nothing is running is not an error; the call is a no-op.
func (m *AssistantManager) Stop() error {
	m.mu.Lock()
	if !m.running() {
		m.mu.Unlock()
		return nil
	}
	cmd := m.cmd
	done := m.done
	m.mu.Unlock()

	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop assistant: %w", err)
	}
	<-done
	return nil
}
