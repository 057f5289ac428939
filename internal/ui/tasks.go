package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/five82/rayvision/internal/rayvision"
)

const (
	stageWaiting   = "waiting"
	stageRendering = "rendering"
	stageDone      = "done"
	stageFailed    = "failed"
	stageIdle      = "idle"
)

// taskStage derives a display stage from the frame counters. The server
// status code is shown beside it but is not interpreted.
func taskStage(t rayvision.TaskSummary) string {
	switch {
	case t.FailedFrames > 0:
		return stageFailed
	case t.ExecutingFrames > 0:
		return stageRendering
	case t.TotalFrames > 0 && t.DoneFrames >= t.TotalFrames:
		return stageDone
	case t.WaitingFrames > 0:
		return stageWaiting
	default:
		return stageIdle
	}
}

func taskLabel(t rayvision.TaskSummary) string {
	if t.Alias != "" {
		return t.Alias
	}
	return strconv.FormatInt(t.ID, 10)
}

func sceneName(t rayvision.TaskSummary) string {
	name := strings.TrimSpace(t.SceneName)
	if name == "" {
		return "(unnamed)"
	}
	return name
}

const (
	colIDWidth       = 10
	colStageWidth    = 10
	colCodeWidth     = 6
	colProgressWidth = 16
	colStartedWidth  = 14
	minSceneWidth    = 12
)

func taskColumns(width int) []table.Column {
	fixed := colIDWidth + colStageWidth + colCodeWidth + colProgressWidth + colStartedWidth
	// Each column carries one cell of padding on both sides, plus the box
	// border.
	scene := max(width-fixed-2*6-2, minSceneWidth)
	return []table.Column{
		{Title: "Task", Width: colIDWidth},
		{Title: "Scene", Width: scene},
		{Title: "Stage", Width: colStageWidth},
		{Title: "Code", Width: colCodeWidth},
		{Title: "Frames", Width: colProgressWidth},
		{Title: "Started", Width: colStartedWidth},
	}
}

func taskRows(tasks []rayvision.TaskSummary, sceneWidth int, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, table.Row{
			taskLabel(t),
			truncateEnd(sceneName(t), sceneWidth),
			taskStage(t),
			strconv.Itoa(t.Status),
			formatProgress(t),
			formatMillis(t.StartTime, now),
		})
	}
	return rows
}
