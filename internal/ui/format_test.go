package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/rayvision/internal/rayvision"
)

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"negative", -5 * time.Second, "now"},
		{"subsecond", 0, "now"},
		{"seconds", 12 * time.Second, "12s"},
		{"minutes", 61 * time.Second, "1m"},
		{"hours_only", 2*time.Hour + 10*time.Second, "2h"},
		{"hours_minutes", 2*time.Hour + 3*time.Minute, "2h 3m"},
		{"days", 24 * time.Hour, "1d"},
		{"days_hours", 26 * time.Hour, "1d 2h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeDuration(tc.in); got != tc.want {
				t.Fatalf("humanizeDuration(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	got := truncateMiddle("a/b/c/d/e", 7)
	if got == "a/b/c/d/e" {
		t.Fatalf("expected truncation")
	}
	if len([]rune(got)) > 7 {
		t.Fatalf("got %q (%d runes), want <=7", got, len([]rune(got)))
	}
}

func TestTruncateEnd(t *testing.T) {
	if got := truncateEnd("scene_final", 6); got != "scene…" {
		t.Fatalf("truncateEnd = %q, want scene…", got)
	}
	if got := truncateEnd("short", 10); got != "short" {
		t.Fatalf("truncateEnd = %q, want short", got)
	}
}

func TestFormatProgress(t *testing.T) {
	if got := formatProgress(rayvision.TaskSummary{}); got != "-" {
		t.Fatalf("formatProgress empty = %q, want -", got)
	}
	if got := formatProgress(rayvision.TaskSummary{TotalFrames: 8, DoneFrames: 2}); got != "2/8  25%" {
		t.Fatalf("formatProgress = %q, want %q", got, "2/8  25%")
	}
}

func TestTaskStage(t *testing.T) {
	cases := []struct {
		task rayvision.TaskSummary
		want string
	}{
		{rayvision.TaskSummary{}, stageIdle},
		{rayvision.TaskSummary{TotalFrames: 4, WaitingFrames: 4}, stageWaiting},
		{rayvision.TaskSummary{TotalFrames: 4, ExecutingFrames: 1}, stageRendering},
		{rayvision.TaskSummary{TotalFrames: 4, DoneFrames: 4}, stageDone},
		{rayvision.TaskSummary{TotalFrames: 4, DoneFrames: 3, FailedFrames: 1}, stageFailed},
	}
	for _, tc := range cases {
		if got := taskStage(tc.task); got != tc.want {
			t.Fatalf("taskStage(%+v) = %q, want %q", tc.task, got, tc.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&rayvision.TransportError{Kind: rayvision.KindTimeout, Err: context.DeadlineExceeded}, "timed out"},
		{&rayvision.TransportError{Kind: rayvision.KindTransport, Err: errors.New("refused")}, "unreachable"},
		{&rayvision.TransportError{Kind: rayvision.KindDecode, Err: errors.New("eof")}, "bad response"},
		{&rayvision.APIError{Code: 404, Message: "Get task failed."}, "api error 404"},
		{&rayvision.ParameterError{Message: "bad"}, "rejected parameters"},
		{&rayvision.SigningError{Reason: "access key is empty"}, "bad credentials"},
		{errors.New("other"), "error"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Fatalf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
