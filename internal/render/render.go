// Package render formats machine output for people: the transition table,
// step-by-step traces and an animated replay of a run. It only consumes
// traces; it never drives a machine itself.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/thruflo/turing/internal/machine"
	"github.com/thruflo/turing/internal/unary"
)

// StateDescriptions explains each state of the addition machine.
var StateDescriptions = map[machine.State]string{
	machine.Q0: "initial: skip the first operand",
	machine.Q1: "reserved, unreachable",
	machine.Q2: "separator rewritten: enter the second operand",
	machine.Q3: "scan to the end of the second operand",
	machine.Q4: "step back and erase the last one",
	machine.Q5: "halt: accept",
}

// displaySymbol spells out the blank so it stands out in tables.
func displaySymbol(s string) string {
	if s == machine.Blank.String() {
		return "BLANK"
	}
	return s
}

// TransitionTable writes the state list and the rules of t.
func TransitionTable(w io.Writer, t *machine.Table) error {
	var sb strings.Builder

	sb.WriteString("States:\n")
	for i := 0; i < machine.NumStates; i++ {
		s := machine.State(i)
		marker := ""
		switch s {
		case t.Start():
			marker = " (start)"
		case t.Accept():
			marker = " (accept)"
		}
		fmt.Fprintf(&sb, "  %s%s: %s\n", s, marker, StateDescriptions[s])
	}

	sb.WriteString("\nTransition function d(q, a) = (q', a', m):\n")
	fmt.Fprintf(&sb, "%-8s %-8s %-12s %-8s %-6s\n", "State", "Input", "Next State", "Output", "Move")
	sb.WriteString(strings.Repeat("-", 46) + "\n")
	for _, e := range t.Rules() {
		fmt.Fprintf(&sb, "%-8s %-8s %-12s %-8s %-6s\n",
			e.State, displaySymbol(e.Read.String()), e.Next, displaySymbol(e.Write.String()), e.Move)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Trace writes one aligned row per transition followed by a summary.
func Trace(w io.Writer, resp *unary.Response) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Initial tape: %s\n\n", resp.InitialTape)
	fmt.Fprintf(&sb, "%-5s %-6s %-5s %-5s %-6s %-5s %s\n", "Step", "State", "Head", "Read", "Write", "Move", "Tape")
	for i, tr := range resp.Transitions {
		fmt.Fprintf(&sb, "%-5d %-6s %-5d %-5s %-6s %-5s %s\n",
			i+1, tr.State, tr.Head, tr.Read, tr.Write, tr.Direction, tr.TapeSnapshot)
	}
	fmt.Fprintf(&sb, "\nFinal tape: %s\nResult: %d\nSteps: %d\n", resp.FinalTape, resp.Sum(), resp.Steps)

	_, err := io.WriteString(w, sb.String())
	return err
}

// TapeLine draws the cells of a trimmed tape snapshot with the head cell
// bracketed (or highlighted when color is set). The snapshot's first symbol
// sits offset cells from position 1, just after the leading sentinel. At
// most width columns are used; the window follows the head.
func TapeLine(snapshot string, offset, head, width int, color bool) string {
	if snapshot == machine.Blank.String() {
		snapshot = ""
	}
	start := 1 + offset

	lo, hi := start-1, start+len(snapshot)
	if head < lo {
		lo = head
	}
	if head > hi {
		hi = head
	}

	cellsFit := width / 3
	if cellsFit < 1 {
		cellsFit = 1
	}
	if hi-lo+1 > cellsFit {
		lo = head - cellsFit/2
		if lo < start-1 && head >= start-1 {
			lo = start - 1
		}
		hi = lo + cellsFit - 1
	}

	var sb strings.Builder
	for pos := lo; pos <= hi; pos++ {
		sym := machine.Blank.String()
		if i := pos - start; i >= 0 && i < len(snapshot) {
			sym = snapshot[i : i+1]
		}
		switch {
		case pos != head:
			sb.WriteString(" " + sym + " ")
		case color:
			sb.WriteString(Style(" "+sym+" ", Reverse, Bold))
		default:
			sb.WriteString("[" + sym + "]")
		}
	}
	return sb.String()
}

// Frame renders transition n (0-based) of resp as display lines.
func Frame(resp *unary.Response, n, width int, color bool) []string {
	tr := resp.Transitions[n]
	header := fmt.Sprintf("step %d/%d  %s  read %s -> write %s, move %s",
		n+1, resp.Steps, tr.State, tr.Read, tr.Write, tr.Direction)
	if color {
		header = Style(header, FgCyan)
	}
	return []string{
		header,
		TapeLine(tr.TapeSnapshot, tr.TapeOffset, tr.Head, width, color),
	}
}

// Replay plays resp back one transition per delay. On a terminal each frame
// replaces the previous one; otherwise frames are written one after another.
// It returns ctx.Err() if ctx is cancelled mid-replay.
func Replay(ctx context.Context, w io.Writer, resp *unary.Response, delay time.Duration) error {
	tty := IsTerminal(w)
	width := Width(w)

	if tty {
		fmt.Fprint(w, CursorHide)
		defer fmt.Fprint(w, CursorShow)
	}

	for i := range resp.Transitions {
		if tty {
			fmt.Fprint(w, ClearScreen+CursorHome)
		} else if i > 0 {
			fmt.Fprintln(w)
		}
		for _, line := range Frame(resp, i, width, tty) {
			fmt.Fprintln(w, line)
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("halted: %s -> %s (%d steps, result %d)",
		resp.InitialTape, resp.FinalTape, resp.Steps, resp.Sum())
	if tty {
		summary = Style(summary, FgGreen, Bold)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", summary)
	return err
}
