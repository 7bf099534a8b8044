// Package monitor implements an interactive line-oriented debugger for a
// running CPU, reading commands from a raw terminal and printing state to
// an arbitrary writer.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"golang.design/x/clipboard"
	"golang.org/x/term"

	"github.com/yysung1123/SIMP/internal/cpu"
)

// Core is the subset of *cpu.CPU the monitor drives. Defined as an
// interface so tests can exercise command parsing without a real bus.
type Core interface {
	Step() error
	IsHalted() bool
	DumpRegisters() string
	PeekWord(addr uint32) (uint32, error)
}

// Monitor reads line-oriented commands from stdin in raw mode and
// reports CPU state to an output writer. It never touches the CPU's
// memory directly except through Core.
type Monitor struct {
	core     Core
	out      io.Writer
	fd       int
	oldState *term.State
	clipOK   bool
}

// New creates a monitor around core, writing output to out. fd is the file
// descriptor to put into raw mode (typically os.Stdin.Fd()).
func New(core Core, out io.Writer, fd int) *Monitor {
	return &Monitor{core: core, out: out, fd: fd}
}

// Run switches the terminal to raw mode, reads line-buffered commands, and
// dispatches them until the user quits or the reader returns io.EOF. It
// restores the terminal before returning, including on error.
func (m *Monitor) Run(in io.Reader) error {
	oldState, err := term.MakeRaw(m.fd)
	if err != nil {
		return fmt.Errorf("monitor: raw mode: %w", err)
	}
	m.oldState = oldState
	defer func() {
		_ = term.Restore(m.fd, m.oldState)
	}()

	if err := clipboard.Init(); err != nil {
		log.Printf("monitor: clipboard unavailable, 'x' will no-op: %v", err)
	} else {
		m.clipOK = true
	}

	reader := bufio.NewReader(in)
	fmt.Fprint(m.out, "mipssim monitor ready, type 'h' for help\r\n")
	for {
		fmt.Fprint(m.out, "> ")
		line, err := readLine(reader)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := m.dispatch(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\r\n", err)
		}
		if quit {
			return nil
		}
	}
}

// readLine collects bytes up to the next newline and returns them without
// the terminator; empty lines are skipped. A raw terminal delivers CR for
// Enter; both CR and LF terminate a line.
func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if b == '\r' || b == '\n' {
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// dispatch runs a single command line and reports whether the monitor
// should exit.
func (m *Monitor) dispatch(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "s", "step":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, fmt.Errorf("bad step count %q: %w", fields[1], err)
			}
			n = v
		}
		for i := 0; i < n && !m.core.IsHalted(); i++ {
			if err := m.core.Step(); err != nil {
				return false, err
			}
		}
		fmt.Fprintf(m.out, "stepped %d\r\n", n)
	case "c", "continue":
		for !m.core.IsHalted() {
			if err := m.core.Step(); err != nil {
				return false, err
			}
		}
		fmt.Fprint(m.out, "halted\r\n")
	case "r", "regs":
		m.printRegs()
	case "m":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: m <addr>")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			return false, fmt.Errorf("bad address %q: %w", fields[1], err)
		}
		v, err := m.core.PeekWord(uint32(addr))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(m.out, "0x%08x: 0x%08x\r\n", addr, v)
	case "x", "copy":
		if !m.clipOK {
			fmt.Fprint(m.out, "clipboard unavailable, ignoring\r\n")
			return false, nil
		}
		clipboard.Write(clipboard.FmtText, []byte(m.core.DumpRegisters()))
		fmt.Fprint(m.out, "register dump copied\r\n")
	case "h", "help":
		fmt.Fprint(m.out, "commands: s/step [n], c/continue, r/regs, m <addr>, x/copy, q/quit\r\n")
	case "q", "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
	return false, nil
}

func (m *Monitor) printRegs() {
	for _, line := range strings.Split(strings.TrimRight(m.core.DumpRegisters(), "\n"), "\n") {
		fmt.Fprintf(m.out, "%s\r\n", line)
	}
}

var _ Core = (*cpu.CPU)(nil)
