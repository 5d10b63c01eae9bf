// Package notify is the user-facing notification channel: transient
// toasts in the browser, lines on the terminal for the CLI.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Message is a catalog key plus its arguments. Keys are English format
// strings; translations live in catalog.go.
type Message struct {
	Key  string
	Args []any
}

func Msg(key string, args ...any) Message {
	return Message{Key: key, Args: args}
}

// Text renders the message in English.
func (m Message) Text() string {
	return fmt.Sprintf(m.Key, m.Args...)
}

type Notifier interface {
	Notify(level Level, m Message)
}

// Writer prints localized notifications, one per line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
	p  *message.Printer
}

func NewWriter(w io.Writer, tag language.Tag) *Writer {
	return &Writer{w: w, p: message.NewPrinter(tag, message.Catalog(messages))}
}

func (n *Writer) Notify(level Level, m Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "•"
	switch level {
	case Success:
		prefix = "✓"
	case Error:
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, n.p.Sprintf(m.Key, m.Args...))
}

// Slog forwards notifications to a structured logger, for servers and
// background jobs that have no user in front of them.
type Slog struct {
	logger *slog.Logger
}

func NewSlog(logger *slog.Logger) *Slog { return &Slog{logger: logger} }

func (n *Slog) Notify(level Level, m Message) {
	switch level {
	case Error:
		n.logger.Warn(m.Text(), "notification", level.String())
	default:
		n.logger.Info(m.Text(), "notification", level.String())
	}
}

// Entry is one recorded notification.
type Entry struct {
	Level Level
	Text  string
}

// Buffer records notifications in memory. Used by tests and by callers
// that want to render notifications themselves.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
}

func (b *Buffer) Notify(level Level, m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Entry{Level: level, Text: m.Text()})
}

// Entries returns a copy of everything recorded so far.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Count returns how many entries at level were recorded.
func (b *Buffer) Count(level Level) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(Level, Message) {}
