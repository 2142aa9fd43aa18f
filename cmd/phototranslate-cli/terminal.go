package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/teslashibe/go-phototranslate/pkg/flow"
	"github.com/teslashibe/go-phototranslate/pkg/web"
)

// terminal is a flow.UI on a text console. Present waits for Enter on
// the shared line channel.
type terminal struct {
	mu       sync.Mutex
	out      io.Writer
	lines    <-chan string
	controls bool
}

func newTerminal(out io.Writer, lines <-chan string) *terminal {
	return &terminal{out: out, lines: lines, controls: true}
}

func (t *terminal) ShowControls(visible bool) {
	t.mu.Lock()
	t.controls = visible
	t.mu.Unlock()
}

func (t *terminal) ShowBusy(label string) {
	if label == "" {
		return
	}
	fmt.Fprintf(t.out, "⏳ %s\n", label)
}

func (t *terminal) Present(ctx context.Context, text string) error {
	rule := strings.Repeat("─", 40)
	fmt.Fprintf(t.out, "\n%s\n%s\n%s\n%s\n[%s] press Enter ", web.ResultTitle, rule, text, rule, web.ResultButton)

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return ctx.Err()
	case <-t.lines:
		return nil
	}
}

func (t *terminal) Notify(ctx context.Context, f *flow.Failure) {
	fmt.Fprintf(t.out, "⚠️  %s\n", f.Message())
}

func (t *terminal) prompt() {
	t.mu.Lock()
	visible := t.controls
	t.mu.Unlock()
	if visible {
		fmt.Fprint(t.out, "> ")
	}
}

func (t *terminal) help() {
	fmt.Fprintln(t.out, "commands: shoot | pick <path> | switch | quit")
}

// Verify terminal implements flow.UI at compile time.
var _ flow.UI = (*terminal)(nil)
