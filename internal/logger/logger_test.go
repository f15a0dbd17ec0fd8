package logger

import "testing"

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "production", ""} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode)
			if err != nil {
				t.Fatalf("New(%q) error = %v", mode, err)
			}
			l.With("component", "test").Debug("hello", "k", 1)
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Nop()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}
