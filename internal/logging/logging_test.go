package logging_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rajsexperiments/scanner-final/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}

func TestNew_JSONFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("warn", "json", &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestLockedWriter_SerializesSharedStream(t *testing.T) {
	var buf bytes.Buffer
	w := logging.NewLockedWriter(&buf)
	assert.Same(t, w, logging.NewLockedWriter(w))

	l := logging.New("info", "text", w)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Info("from logger")
		}()
		go func() {
			defer wg.Done()
			fmt.Fprintln(w, "from notifier")
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, strings.Count(buf.String(), "\n"))
	assert.Equal(t, 20, strings.Count(buf.String(), "from notifier"))
}
