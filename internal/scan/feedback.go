package scan

import (
	"io"
	"sync"
)

// Feedback signals an accepted scan to the operator (beep, vibration).
type Feedback interface {
	Accepted()
}

// Bell rings the terminal bell on each accepted scan.
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

func (b *Bell) Accepted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.W, "\a")
}

type silent struct{}

func (silent) Accepted() {}
