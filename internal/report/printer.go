package report

import (
	"fmt"
	"io"
	"sync"
)

// Printer serializes per-task output across workers. One task's three-part
// block (command echo, stdout, stderr) is emitted under a single lock so no
// other worker's output can interleave with it.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewPrinter creates a Printer writing the report to out and tool stderr to err.
func NewPrinter(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// Print emits one task's output block atomically: the echoed command line,
// the tool's stdout, then its reconciled stderr.
func (p *Printer) Print(cmdline, stdout, stderr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, cmdline)
	if stdout != "" {
		io.WriteString(p.out, stdout)
		if !endsWithNewline(stdout) {
			io.WriteString(p.out, "\n")
		}
	}
	if stderr != "" {
		io.WriteString(p.err, stderr)
		if !endsWithNewline(stderr) {
			io.WriteString(p.err, "\n")
		}
	}
}

func endsWithNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}
