package scan

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoCamera         = errors.New("no camera available")
	ErrCameraBusy       = errors.New("camera already started")
)

// Camera delivers decoded QR payloads to onDecode until Stop is called or
// ctx is cancelled. A Camera serves one controller.
type Camera interface {
	Start(ctx context.Context, onDecode func(text string)) error
	Stop() error
}

// LineCamera is a headless camera: each non-blank line read from the
// source is one decoded payload. Lines are only consumed while started.
type LineCamera struct {
	src      io.Reader
	readOnce sync.Once
	lines    chan string
	doneOnce sync.Once
	done     chan struct{}
	quitOnce sync.Once
	quit     chan struct{}

	mu     sync.Mutex
	stop   chan struct{}
	exited chan struct{}
}

func NewLineCamera(r io.Reader) *LineCamera {
	return &LineCamera{
		src:   r,
		lines: make(chan string),
		done:  make(chan struct{}),
		quit:  make(chan struct{}),
	}
}

// Done is closed once the source is exhausted and every line has been
// delivered.
func (c *LineCamera) Done() <-chan struct{} { return c.done }

func (c *LineCamera) read() {
	defer close(c.lines)
	sc := bufio.NewScanner(c.src)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			select {
			case c.lines <- line:
			case <-c.quit:
				return
			}
		}
	}
}

func (c *LineCamera) Start(ctx context.Context, onDecode func(string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return ErrCameraBusy
	}
	select {
	case <-c.done:
		return ErrNoCamera
	case <-c.quit:
		return ErrNoCamera
	default:
	}

	c.readOnce.Do(func() { go c.read() })
	stop, exited := make(chan struct{}), make(chan struct{})
	c.stop, c.exited = stop, exited

	go func() {
		defer close(exited)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case line, ok := <-c.lines:
				if !ok {
					c.doneOnce.Do(func() { close(c.done) })
					return
				}
				onDecode(line)
			}
		}
	}()
	return nil
}

// Stop halts delivery and waits for an in-progress callback to return.
// Stopping a stopped camera is a no-op.
func (c *LineCamera) Stop() error {
	c.mu.Lock()
	stop, exited := c.stop, c.exited
	c.stop, c.exited = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-exited
	return nil
}

// Close stops the camera for good and lets the reader goroutine exit
// without draining the source. A read already blocked in the source
// returns only when the source does.
func (c *LineCamera) Close() error {
	err := c.Stop()
	c.quitOnce.Do(func() { close(c.quit) })
	return err
}
