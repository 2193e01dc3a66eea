package ui

import (
	"bytes"
	"strings"
	"testing"
)

func captureStatus(t *testing.T, verbosity int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldVerbosity, oldNoColor := statusOut, Verbosity, NoColor
	statusOut = &buf
	Verbosity = verbosity
	SetNoColor(true)
	t.Cleanup(func() {
		statusOut, Verbosity = oldOut, oldVerbosity
		SetNoColor(oldNoColor)
	})
	return &buf
}

func TestStatusAlignment(t *testing.T) {
	buf := captureStatus(t, VerbNormal)
	Status("Published", "issue abc")

	want := "   Published  issue abc\n"
	if buf.String() != want {
		t.Errorf("Status wrote %q, want %q", buf.String(), want)
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      []string
		notWant   []string
	}{
		{"quiet", VerbQuiet, []string{"warn", "err"}, []string{"status", "detail", "debug"}},
		{"normal", VerbNormal, []string{"status", "warn", "err"}, []string{"detail", "debug"}},
		{"verbose", VerbVerbose, []string{"status", "detail"}, []string{"debug"}},
		{"debug", VerbDebug, []string{"status", "detail", "debug"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStatus(t, tt.verbosity)
			Status("S", "status")
			Detail("D", "detail")
			RelayLogger("Fetched", "detail via relay")
			Debugf("debug %d", 1)
			WarningStatus("W", "warn")
			ErrorStatus("E", "err")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in %q", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q in %q", w, out)
				}
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	got := FormatError("no relay accepted the issue", "all relays timed out", "check your connection")
	want := "Error: no relay accepted the issue\n  → all relays timed out\n  → check your connection"
	if got != want {
		t.Errorf("FormatError = %q, want %q", got, want)
	}

	if got := FormatError("bad", "", ""); got != "Error: bad" {
		t.Errorf("FormatError without hints = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfirm(t *testing.T) {
	_ = captureStatus(t, VerbNormal)

	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\n", true, false},
		{"y", false, true},
	}

	for _, tt := range tests {
		got, err := confirm(strings.NewReader(tt.input), "Clear drafts?", tt.defaultYes)
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q, %v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
		}
	}
}

func TestDebugWriter(t *testing.T) {
	tests := []struct {
		verbosity int
		want      string
	}{
		{VerbQuiet, ""},
		{VerbNormal, ""},
		{VerbVerbose, ""},
		{VerbDebug, "bad signature\n"},
	}
	for _, tt := range tests {
		buf := captureStatus(t, tt.verbosity)
		if _, err := DebugWriter().Write([]byte("bad signature\n")); err != nil {
			t.Fatalf("write at verbosity %d: %v", tt.verbosity, err)
		}
		if buf.String() != tt.want {
			t.Errorf("verbosity %d: got %q, want %q", tt.verbosity, buf.String(), tt.want)
		}
	}
}
