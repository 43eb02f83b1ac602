package main

import (
	"bytes"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// lineWriter turns each complete line written to it into a program
// message. Lines written before attach are dropped.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	send func(tea.Msg)
	wrap func(string) tea.Msg
}

func newLineWriter(wrap func(string) tea.Msg) *lineWriter {
	return &lineWriter{wrap: wrap}
}

// attach starts delivering lines through send.
func (w *lineWriter) attach(send func(tea.Msg)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.send = send
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf.Write(p)
	var lines []string
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimSuffix(string(w.buf.Next(i+1)), "\n"))
	}
	send := w.send
	w.mu.Unlock()

	if send == nil {
		return len(p), nil
	}
	for _, line := range lines {
		send(w.wrap(line))
	}
	return len(p), nil
}
