// Package dialog provides terminal stand-ins for the native directory picker.
package dialog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrCancelled   = errors.Base("directory selection cancelled")
	ErrUnavailable = errors.Base("no interactive terminal for directory selection")
)

// Prompt asks for a directory path on a terminal. A single goroutine reads In
// line by line, so a line that arrives after a cancelled call answers the next one.
// Use it through a pointer.
type Prompt struct {
	In    io.Reader
	Out   io.Writer
	Title string

	once  sync.Once
	lines chan answer
}

type answer struct {
	line string
	err  error
}

func (p *Prompt) readLines() {
	defer close(p.lines)
	reader := bufio.NewReader(p.In)
	for {
		line, err := reader.ReadString('\n')
		p.lines <- answer{line: line, err: err}
		if err != nil {
			return
		}
	}
}

func (p *Prompt) SelectDirectory(ctx context.Context) (string, error) {
	if p.In == nil {
		return "", errors.WithStack(ErrUnavailable)
	}
	p.once.Do(func() {
		p.lines = make(chan answer)
		go p.readLines()
	})
	title := p.Title
	if title == "" {
		title = "Select a directory"
	}
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s: ", title)
	}

	var line string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a, ok := <-p.lines:
		if !ok {
			return "", errors.WithStack(ErrCancelled)
		}
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return "", errors.Errorf("read selection: %w", a.err)
		}
		line = strings.TrimSpace(a.line)
	}
	if line == "" {
		return "", errors.WithStack(ErrCancelled)
	}

	path, err := expandHome(line)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolve %s: %w", line, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", errors.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Unavailable always fails; it is bound when no terminal is attached.
type Unavailable struct{}

func (Unavailable) SelectDirectory(context.Context) (string, error) {
	return "", errors.WithStack(ErrUnavailable)
}
