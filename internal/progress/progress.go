// Package progress provides the status-reporting sink shared across a flow
// run, including nested flows.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// ID identifies one reported task within a run.
type ID int

// Reporter receives status updates during flow execution. One reporter is
// created per run and shared with every stage and task, nested flows
// included, so a run never opens a second reporting surface.
//
// Implementations must tolerate concurrent updates from sibling broadcast
// tasks; updates are keyed by ID only.
type Reporter interface {
	// Add registers a new task and returns its identifier.
	Add(label string) ID

	// Update replaces the status line for a task.
	Update(id ID, status string)

	// Done marks a task finished.
	Done(id ID, success bool)
}

// ConsoleReporter prints progress lines to a writer. All methods are safe
// for concurrent use.
type ConsoleReporter struct {
	mu     sync.Mutex
	out    io.Writer
	next   ID
	labels map[ID]string
}

// NewConsole creates a reporter writing to out.
func NewConsole(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:    out,
		labels: make(map[ID]string),
	}
}

// Add registers a task and prints its start line.
func (r *ConsoleReporter) Add(label string) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.labels[id] = label
	fmt.Fprintf(r.out, "  → %s\n", label)
	return id
}

// Update prints a status line for the task.
func (r *ConsoleReporter) Update(id ID, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "    %s: %s\n", r.labels[id], status)
}

// Done prints the task's final status.
func (r *ConsoleReporter) Done(id ID, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mark := "✓"
	if !success {
		mark = "✗"
	}
	fmt.Fprintf(r.out, "  %s %s\n", mark, r.labels[id])
}

// Nop is a reporter that discards all updates. Useful in tests.
type Nop struct {
	mu   sync.Mutex
	next ID
}

// NewNop creates a discarding reporter.
func NewNop() *Nop { return &Nop{} }

// Add returns a fresh identifier and discards the label.
func (n *Nop) Add(string) ID {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	return id
}

// Update discards the status.
func (n *Nop) Update(ID, string) {}

// Done discards the result.
func (n *Nop) Done(ID, bool) {}
