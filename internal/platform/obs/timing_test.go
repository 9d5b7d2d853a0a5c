package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestTimeLogsRequestIDAndError(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "abc")
	err := errors.New("boom")
	Time(ctx, "fleet.Snapshot")(&err)

	line := buf.String()
	for _, want := range []string{"req_id=abc", "op=fleet.Snapshot", "err=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestTimeWithoutRequestID(t *testing.T) {
	buf := captureLog(t)

	var err error
	Time(context.Background(), "tracking.Refresh")(&err)

	line := buf.String()
	if !strings.Contains(line, "req_id=- ") || strings.Contains(line, "err=") {
		t.Fatalf("unexpected log line %q", line)
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("expected empty request id")
	}
}
