package store

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestWithLogger(t *testing.T) {
	s := &Store{}
	l := zerolog.Nop()
	if err := WithLogger(l)(s); err != nil {
		t.Fatalf("WithLogger() err = %v", err)
	}
	if s.Log.GetLevel() != l.GetLevel() {
		t.Fatalf("logger level = %v, want %v", s.Log.GetLevel(), l.GetLevel())
	}
}
