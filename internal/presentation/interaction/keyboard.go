package interaction

import (
	"io"
	"os"
	"sync"
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	in      io.Reader
	restore func() error
	input   chan KeyEvent
	stop    chan struct{}
	once    sync.Once
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
	KeyInterrupt
)

// Action is what the dashboard does in response to a key
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRefresh
)

// NewKeyboardReader puts stdin into raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	restore, err := enableRawMode(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	kr := newReader(os.Stdin)
	kr.restore = restore
	go kr.readInput()
	return kr, nil
}

// NewReaderFrom reads keys from r without touching terminal modes
func NewReaderFrom(r io.Reader) *KeyboardReader {
	kr := newReader(r)
	go kr.readInput()
	return kr
}

func newReader(r io.Reader) *KeyboardReader {
	return &KeyboardReader{
		in:    r,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}
}

func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 3)

	for {
		n, err := kr.in.Read(buf)
		if n > 0 {
			if event := kr.parseInput(buf[:n]); event != nil {
				select {
				case kr.input <- *event:
				case <-kr.stop:
					return
				}
			}
		}
		if err != nil {
			return
		}
		select {
		case <-kr.stop:
			return
		default:
		}
	}
}

func (kr *KeyboardReader) parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case 3: // Ctrl+C
		return &KeyEvent{Key: 3, Type: KeyInterrupt}
	case 27: // ESC
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		// arrow keys and other sequences are ignored
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the reader and restores the terminal. Safe to call twice.
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		if kr.restore != nil {
			err = kr.restore()
		}
	})
	return err
}

// ActionFor maps a key to a dashboard action
func ActionFor(ev KeyEvent) Action {
	switch ev.Type {
	case KeyInterrupt, KeyEscape:
		return ActionQuit
	case KeyChar:
		switch ev.Key {
		case 'q', 'Q':
			return ActionQuit
		case 'r', 'R':
			return ActionRefresh
		}
	}
	return ActionNone
}
