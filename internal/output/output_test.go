package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// captureStdout redirects package output into a buffer for one test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = orig })
	return &buf
}

func TestMessageHelpers(t *testing.T) {
	tests := []struct {
		name     string
		print    func()
		expected string
	}{
		{"success", func() { Success("app %s created", "dash") }, "app dash created"},
		{"info", func() { Info("creating app") }, "creating app"},
		{"warning", func() { Warning("grant failed for %s", "bob") }, "grant failed for bob"},
		{"error", func() { Error("not found") }, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			tt.print()
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestTable(t *testing.T) {
	buf := captureStdout(t)
	Table(
		[]string{"User", "App"},
		[][]string{
			{"alice", "team-dash-ab12f34"},
			{"bob", "reports-cd34e56"},
		},
	)

	out := buf.String()
	assert.Contains(t, out, "User")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "team-dash-ab12f34")
	assert.Contains(t, out, "─")
}

func TestAppStatusBadge(t *testing.T) {
	assert.Contains(t, AppStatusBadge(true, false, ""), "ready")
	assert.Contains(t, AppStatusBadge(false, false, "spawn"), "spawn")
	assert.Contains(t, AppStatusBadge(false, true, ""), "stopped")
	assert.Contains(t, AppStatusBadge(false, false, ""), "inactive")
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "45s", Duration(45*time.Second))
	assert.Equal(t, "2m 5s", Duration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 30m", Duration(90*time.Minute))
}
