package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"WARN", false, false},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			initTo(&buf, tt.level, false)
			Debug("dbg")
			Info("inf")
			out := buf.String()
			if got := strings.Contains(out, "msg=dbg"); got != tt.wantDebug {
				t.Fatalf("debug logged = %v, output %q", got, out)
			}
			if got := strings.Contains(out, "msg=inf"); got != tt.wantInfo {
				t.Fatalf("info logged = %v, output %q", got, out)
			}
		})
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	initTo(&buf, "info", true)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithContext(ctx).Info("hello", "n", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["request_id"] != "req-1" || rec["msg"] != "hello" {
		t.Fatalf("record = %v", rec)
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("empty context has a request id")
	}
}
