package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	in := "select  a,\n\tb\r\nfrom   t "
	if got := compact(in); got != "select a, b from t" {
		t.Fatalf("compact() = %q", got)
	}
}

func TestTracer_LevelsBySlowAndError(t *testing.T) {
	cases := []struct {
		name  string
		ev    QueryEvent
		level string
	}{
		{"fast", QueryEvent{SQL: "select 1"}, `"level":"debug"`},
		{"slow", QueryEvent{SQL: "select 1", Slow: true}, `"level":"warn"`},
		{"error", QueryEvent{SQL: "select 1", Err: errors.New("x")}, `"level":"warn"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
			Tracer(root).OnQuery(context.Background(), tc.ev)
			out := buf.String()
			if !strings.Contains(out, tc.level) || !strings.Contains(out, `"component":"pg"`) {
				t.Fatalf("trace line = %s", out)
			}
		})
	}
}
