package interaction

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestParseInput(t *testing.T) {
	kr := newReader(strings.NewReader(""))

	tests := []struct {
		name     string
		input    []byte
		expected *KeyEvent
	}{
		{
			name:     "Regular char",
			input:    []byte{'q'},
			expected: &KeyEvent{Key: 'q', Type: KeyChar},
		},
		{
			name:     "Escape",
			input:    []byte{27},
			expected: &KeyEvent{Key: 27, Type: KeyEscape},
		},
		{
			name:     "Ctrl+C",
			input:    []byte{3},
			expected: &KeyEvent{Key: 3, Type: KeyInterrupt},
		},
		{
			name:     "Arrow key ignored",
			input:    []byte{27, '[', 'A'},
			expected: nil,
		},
		{
			name:     "Empty",
			input:    []byte{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := kr.parseInput(tt.input)
			if tt.expected == nil {
				if event != nil {
					t.Errorf("Expected nil, got %+v", event)
				}
			} else {
				if event == nil {
					t.Errorf("Expected %+v, got nil", tt.expected)
				} else if event.Type != tt.expected.Type || event.Key != tt.expected.Key {
					t.Errorf("Expected %+v, got %+v", tt.expected, event)
				}
			}
		})
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		event KeyEvent
		want  Action
	}{
		{KeyEvent{Key: 'q', Type: KeyChar}, ActionQuit},
		{KeyEvent{Key: 'Q', Type: KeyChar}, ActionQuit},
		{KeyEvent{Key: 27, Type: KeyEscape}, ActionQuit},
		{KeyEvent{Key: 3, Type: KeyInterrupt}, ActionQuit},
		{KeyEvent{Key: 'r', Type: KeyChar}, ActionRefresh},
		{KeyEvent{Key: 'x', Type: KeyChar}, ActionNone},
	}

	for _, tt := range tests {
		if got := ActionFor(tt.event); got != tt.want {
			t.Errorf("ActionFor(%+v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestReaderDeliversEvents(t *testing.T) {
	pr, pw := io.Pipe()
	kr := NewReaderFrom(pr)
	defer kr.Close()

	go func() {
		_, _ = pw.Write([]byte("r"))
		_, _ = pw.Write([]byte("q"))
		_ = pw.Close()
	}()

	var got []rune
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-kr.Events():
			got = append(got, ev.Key)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %q", string(got))
		}
	}
	if string(got) != "rq" {
		t.Errorf("expected events %q, got %q", "rq", string(got))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	kr := NewReaderFrom(strings.NewReader(""))
	if err := kr.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := kr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
