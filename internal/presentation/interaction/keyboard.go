//go:build darwin || linux

package interaction

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not a terminal
var ErrNotTerminal = errors.New("stdin is not a terminal")

// KeyboardReader handles keyboard input in raw mode and reports commands
type KeyboardReader struct {
	oldState *unix.Termios
	events   chan Command
	stop     chan struct{}
	once     sync.Once
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
)

// NewKeyboardReader puts stdin in raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNotTerminal
	}

	kr := &KeyboardReader{
		events: make(chan Command, 10),
		stop:   make(chan struct{}),
	}

	// Set terminal to raw mode
	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	// Start reading keyboard input
	go kr.readInput()

	return kr, nil
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 3)

	for {
		select {
		case <-kr.stop:
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}

			event := parseInput(buf[:n])
			if event == nil {
				continue
			}
			cmd, ok := CommandForKey(*event)
			if !ok {
				continue
			}
			select {
			case kr.events <- cmd:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput parses raw keyboard input
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	// Handle Ctrl+C
	if buf[0] == 3 {
		return &KeyEvent{Key: 3, Type: KeyChar}
	}

	// A lone ESC; arrow keys and other sequences are ignored
	if buf[0] == 27 {
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the command channel
func (kr *KeyboardReader) Events() <-chan Command {
	return kr.events
}

// Close stops the keyboard reader and restores the terminal
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		err = kr.disableRawMode()
	})
	return err
}
