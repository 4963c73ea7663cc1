// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/knetx-controls/localsim/lib/client"
)

// pollInterval is how often the panel pings the runtime.
const pollInterval = time.Second

// pollTimeout bounds one poll exchange. Shorter than the poll
// interval so a dead runtime cannot back polls up.
const pollTimeout = 500 * time.Millisecond

// pollMsg carries one poll result into the update loop.
type pollMsg struct {
	online        bool
	state         string
	uptimeMS      int64
	projectLoaded bool
}

// commandMsg carries the outcome of a control command (START, STOP,
// SHUTDOWN) or a runtime launch.
type commandMsg struct {
	notice string
	err    error
}

// tickMsg schedules the next poll.
type tickMsg struct{}

type model struct {
	addr       string
	runtimeBin string

	online        bool
	state         string
	uptimeMS      int64
	projectLoaded bool

	notice  string
	lastErr error

	quitting bool
}

func newModel(addr, runtimeBin string) model {
	return model{addr: addr, runtimeBin: runtimeBin, state: "?"}
}

func (m model) Init() tea.Cmd {
	return poll(m.addr)
}

// poll dials, pings, and reports. One connection per poll, so the
// panel never owns forces and a hung runtime only costs one timeout.
func poll(addr string) tea.Cmd {
	return func() tea.Msg {
		c, err := client.Dial(addr, pollTimeout)
		if err != nil {
			return pollMsg{}
		}
		defer c.Close()
		info, err := c.Ping()
		if err != nil {
			return pollMsg{}
		}
		return pollMsg{
			online:        true,
			state:         info.RuntimeState,
			uptimeMS:      info.UptimeMS,
			projectLoaded: info.ProjectLoaded,
		}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// control runs one short-lived command against the runtime.
func control(addr string, action func(*client.Client) (string, error)) tea.Cmd {
	return func() tea.Msg {
		c, err := client.Dial(addr, client.DefaultTimeout)
		if err != nil {
			return commandMsg{err: err}
		}
		defer c.Close()
		notice, err := action(c)
		return commandMsg{notice: notice, err: err}
	}
}

// launchRuntime starts a runtime process detached from the panel,
// logging to a file the way the desktop launcher did.
func launchRuntime(runtimeBin string) tea.Cmd {
	return func() tea.Msg {
		logDir := filepath.Join(os.TempDir(), "localsim")
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return commandMsg{err: err}
		}
		logPath := filepath.Join(logDir, "localsim.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return commandMsg{err: err}
		}
		defer logFile.Close()

		command := exec.Command(runtimeBin)
		command.Stdout = logFile
		command.Stderr = logFile
		if err := command.Start(); err != nil {
			return commandMsg{err: fmt.Errorf("launching %s: %w", runtimeBin, err)}
		}
		// Reap in the background so the child never zombies.
		go command.Wait()
		return commandMsg{notice: fmt.Sprintf("runtime launched, log %s", logPath)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		m.online = msg.online
		m.uptimeMS = msg.uptimeMS
		m.projectLoaded = msg.projectLoaded
		if msg.online {
			m.state = msg.state
		} else {
			m.state = "?"
		}
		return m, scheduleTick()

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, poll(m.addr)

	case commandMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.notice = msg.notice
		}
		return m, poll(m.addr)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, control(m.addr, func(c *client.Client) (string, error) {
				state, err := c.Start()
				return "state " + state, err
			})
		case "s":
			return m, control(m.addr, func(c *client.Client) (string, error) {
				state, err := c.Stop()
				return "state " + state, err
			})
		case "k":
			return m, control(m.addr, func(c *client.Client) (string, error) {
				return "shutdown requested", c.Shutdown()
			})
		case "l":
			if m.online {
				m.notice = "runtime already online"
				return m, nil
			}
			return m, launchRuntime(m.runtimeBin)
		}
	}
	return m, nil
}

var (
	ledOnline  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	ledOffline = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	led := ledOffline.Render("● OFFLINE")
	if m.online {
		led = ledOnline.Render("● ONLINE")
	}

	project := "no project"
	if m.projectLoaded {
		project = "project loaded"
	}

	status := fmt.Sprintf("%s  %s %s  %s %s  %s",
		led,
		labelStyle.Render("STATE"), m.state,
		labelStyle.Render("UPTIME"), formatUptime(m.uptimeMS),
		project,
	)

	line2 := ""
	if m.lastErr != nil {
		line2 = errorStyle.Render(m.lastErr.Error())
	} else if m.notice != "" {
		line2 = m.notice
	}

	help := helpStyle.Render("r run  s stop  k shutdown  l launch  q quit")

	body := status
	if line2 != "" {
		body += "\n" + line2
	}
	body += "\n" + help
	return frameStyle.Render(body) + "\n"
}

func formatUptime(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	return d.Truncate(time.Second).String()
}
