package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/vt"
	"github.com/creack/pty"
)

// ── Messages ───────────────────────────────────────────────────────

type PaneOutputMsg struct {
	ID        int
	BytesRead int
}

type PaneExitedMsg struct {
	ID  int
	Err error
}

type forceResizeMsg struct{ ID int }

// ── Pane ───────────────────────────────────────────────────────────

// ResourceError reports a failed terminal surface creation. The layout
// mutation that wanted the surface is abandoned when this is returned.
type ResourceError struct {
	Shell string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("starting shell %q: %v", e.Shell, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Pane is one terminal surface: a shell process on a PTY feeding a
// screen emulator. All fields are owned by the update loop; the PTY
// reader re-enters through messages rather than touching the pane.
type Pane struct {
	id         int
	cmd        *exec.Cmd
	ptyFile    *os.File
	emulator   *vt.SafeEmulator
	cols, rows int
	scrollback int
	exited     bool
}

// paneFactory creates panes. The session holds one so tests can swap
// in surfaces with no live shell behind them.
type paneFactory func(id int, cfg *ConfigSnapshot, cols, rows int) (*Pane, error)

// newPane spawns the configured shell on a fresh PTY. Creation is
// synchronous: the caller only commits layout changes once the surface
// exists.
func newPane(id int, cfg *ConfigSnapshot, cols, rows int) (*Pane, error) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	em := vt.NewSafeEmulator(cols, rows)

	cmd := exec.Command(cfg.Shell)
	if home, err := os.UserHomeDir(); err == nil {
		cmd.Dir = home
	}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		em.Close()
		return nil, &ResourceError{Shell: cfg.Shell, Err: err}
	}

	p := &Pane{
		id:         id,
		cmd:        cmd,
		ptyFile:    ptmx,
		emulator:   em,
		cols:       cols,
		rows:       rows,
		scrollback: cfg.ScrollbackLines,
	}
	go p.forwardResponses()
	return p, nil
}

// Resize adjusts both the PTY and the emulator to the new surface
// size.
func (p *Pane) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == p.cols && rows == p.rows {
		return
	}
	p.cols = cols
	p.rows = rows
	if p.ptyFile != nil {
		pty.Setsize(p.ptyFile, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	}
	if p.emulator != nil {
		p.emulator.Resize(cols, rows)
	}
}

// Screen returns the emulator's rendered screen with ANSI styling.
func (p *Pane) Screen() string {
	if p.emulator == nil {
		return ""
	}
	return p.emulator.Render()
}

// WriteInput sends bytes to the shell.
func (p *Pane) WriteInput(b []byte) {
	if p.ptyFile != nil && len(b) > 0 {
		p.ptyFile.Write(b)
	}
}

// applyConfig picks up settings a live pane can honor. The shell
// process itself is never restarted by a config change.
func (p *Pane) applyConfig(cfg *ConfigSnapshot) {
	p.scrollback = cfg.ScrollbackLines
}

// terminate asks the shell to exit.
func (p *Pane) terminate() {
	if p.cmd != nil && p.cmd.Process != nil && !p.exited {
		p.cmd.Process.Signal(syscall.SIGTERM)
	}
}

// release frees the pane's surface and reaps the process. Closing the
// PTY unblocks any pending reader; Wait runs off the update loop so a
// slow exit never stalls rendering.
func (p *Pane) release() {
	em := p.emulator
	ptf := p.ptyFile
	cmd := p.cmd
	p.emulator = nil
	p.ptyFile = nil
	go func() {
		if em != nil {
			em.Close()
		}
		if ptf != nil {
			ptf.Close()
		}
		if cmd != nil {
			cmd.Wait()
		}
	}()
}

// ── PTY I/O ────────────────────────────────────────────────────────

func readPanePTY(p *Pane) tea.Cmd {
	id := p.id
	ptf := p.ptyFile
	em := p.emulator
	return func() tea.Msg {
		if ptf == nil || em == nil {
			return PaneExitedMsg{ID: id}
		}
		buf := make([]byte, 32*1024)
		n, err := ptf.Read(buf)
		if err != nil {
			return PaneExitedMsg{ID: id, Err: err}
		}
		em.Write(buf[:n])
		return PaneOutputMsg{ID: id, BytesRead: n}
	}
}

// forwardResponses reads terminal query responses from the emulator and
// writes them back to the PTY so the shell receives them.
func (p *Pane) forwardResponses() {
	buf := make([]byte, 1024)
	for {
		n, err := p.emulator.Read(buf)
		if n > 0 && p.ptyFile != nil {
			p.ptyFile.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// delayedResize performs a "size jiggle" to force SIGWINCH, so
// full-screen programs repaint after the pane settles.
func delayedResize(p *Pane) tea.Cmd {
	id := p.id
	return func() tea.Msg {
		time.Sleep(300 * time.Millisecond)
		if p.ptyFile == nil || p.emulator == nil || p.rows < 2 {
			return forceResizeMsg{ID: id}
		}
		cols, rows := p.cols, p.rows
		pty.Setsize(p.ptyFile, &pty.Winsize{Rows: uint16(rows - 1), Cols: uint16(cols)})
		p.emulator.Resize(cols, rows-1)
		time.Sleep(100 * time.Millisecond)

		pty.Setsize(p.ptyFile, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		p.emulator.Resize(cols, rows)
		return forceResizeMsg{ID: id}
	}
}
