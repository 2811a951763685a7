// Package diag collects the diagnostics produced while compiling or
// decompiling. A single Diagnostics value is owned by one pass, and
// every validation path reports into it instead of returning an
// error. Callers check HasErrors once, when deciding whether to emit
// output.
package diag

import (
	"fmt"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// SourceLine locates a diagnostic. For compiled documents it is a
// file and line, for decompiled rows it is the table name and the
// 1-based row position.
type SourceLine struct {
	File string
	Line int
}

func (s SourceLine) String() string {
	switch {
	case s.File == "" && s.Line == 0:
		return ""
	case s.Line == 0:
		return s.File
	default:
		return fmt.Sprintf("%s(%d)", s.File, s.Line)
	}
}

// Template is a parameterized message definition. Extensions declare
// their own templates next to their compilers.
type Template struct {
	ID       int
	Name     string
	Severity Severity
	Format   string
}

// New instantiates the template at a source location.
func (t Template) New(src SourceLine, args ...interface{}) Message {
	return Message{
		Source:   src,
		Severity: t.Severity,
		ID:       t.ID,
		Name:     t.Name,
		Format:   t.Format,
		Args:     args,
	}
}

// Message is a single diagnostic. The text is only rendered on demand.
type Message struct {
	Source   SourceLine
	Severity Severity
	ID       int
	Name     string
	Format   string
	Args     []interface{}
}

func (m Message) String() string {
	return fmt.Sprintf(m.Format, m.Args...)
}

// Code is the stable short code for the message, eg: WXE0010.
func (m Message) Code() string {
	prefix := "WXI"
	switch m.Severity {
	case Error:
		prefix = "WXE"
	case Warning:
		prefix = "WXW"
	}
	return fmt.Sprintf("%s%04d", prefix, m.ID)
}

// Diagnostics accumulates messages for one compile or decompile pass.
type Diagnostics struct {
	messages []Message
	errors   int
	warnings int
}

func New() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) Add(m Message) {
	d.messages = append(d.messages, m)
	switch m.Severity {
	case Error:
		d.errors++
	case Warning:
		d.warnings++
	}
}

// HasErrors is the emission gate.
func (d *Diagnostics) HasErrors() bool {
	return d.errors > 0
}

func (d *Diagnostics) ErrorCount() int {
	return d.errors
}

func (d *Diagnostics) WarningCount() int {
	return d.warnings
}

// Messages returns every message in the order it was reported.
func (d *Diagnostics) Messages() []Message {
	out := make([]Message, len(d.messages))
	copy(out, d.messages)
	return out
}

func (d *Diagnostics) Errors() []Message {
	return d.filter(func(m Message) bool { return m.Severity == Error })
}

func (d *Diagnostics) Warnings() []Message {
	return d.filter(func(m Message) bool { return m.Severity == Warning })
}

// Named returns the messages created from the template with the given name.
func (d *Diagnostics) Named(name string) []Message {
	return d.filter(func(m Message) bool { return m.Name == name })
}

func (d *Diagnostics) filter(keep func(Message) bool) []Message {
	var out []Message
	for _, m := range d.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Err returns nil when no error was reported, otherwise an *ErrorList
// carrying every error message.
func (d *Diagnostics) Err() error {
	if d.errors == 0 {
		return nil
	}
	return &ErrorList{Messages: d.Errors()}
}

// Log writes each message to logger at a level matching its severity.
func (d *Diagnostics) Log(logger log.Logger) {
	for _, m := range d.messages {
		var l log.Logger
		switch m.Severity {
		case Error:
			l = level.Error(logger)
		case Warning:
			l = level.Warn(logger)
		default:
			l = level.Info(logger)
		}
		l.Log(
			"msg", m.String(),
			"code", m.Code(),
			"name", m.Name,
			"source", m.Source.String(),
		)
	}
}

// ErrorList is returned by Diagnostics.Err.
type ErrorList struct {
	Messages []Message
}

func (e *ErrorList) Error() string {
	const maxShown = 3

	b := &strings.Builder{}
	n := len(e.Messages)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		m := e.Messages[i]
		if src := m.Source.String(); src != "" {
			fmt.Fprintf(b, "%s: ", src)
		}
		fmt.Fprintf(b, "%s %s", m.Code(), m.String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}
