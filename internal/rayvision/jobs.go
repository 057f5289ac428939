package rayvision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
)

// Task priorities accepted by createTask.
const (
	TaskLevelNormal = 50
	TaskLevelHigh   = 60
)

// TaskIDState tracks where an allocator is in the allocate/submit cycle.
type TaskIDState int

const (
	TaskNoID TaskIDState = iota
	TaskIDAllocated
	TaskSubmitted
)

func (s TaskIDState) String() string {
	switch s {
	case TaskNoID:
		return "no-id"
	case TaskIDAllocated:
		return "allocated"
	case TaskSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("TaskIDState(%d)", int(s))
	}
}

var (
	// ErrTaskSubmitted is returned when the current task id was already
	// submitted. Call NewTaskID to start another job.
	ErrTaskSubmitted = errors.New("task id already submitted")
	// ErrNoTaskID is returned when createTask returns an empty id list.
	ErrNoTaskID = errors.New("createTask returned no task id")
)

// TaskIDAllocator hands out a task id and remembers it until the job using
// it is submitted.
type TaskIDAllocator struct {
	poster Poster
	level  int

	mu    sync.Mutex
	id    int64
	state TaskIDState
}

// NewTaskIDAllocator returns an allocator creating ids at the given task
// level. Zero means TaskLevelNormal.
func NewTaskIDAllocator(p Poster, level int) *TaskIDAllocator {
	if level == 0 {
		level = TaskLevelNormal
	}
	return &TaskIDAllocator{poster: p, level: level}
}

// State reports the allocator state.
func (a *TaskIDAllocator) State() TaskIDState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// TaskID returns the current id, allocating one on first use.
func (a *TaskIDAllocator) TaskID(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case TaskIDAllocated:
		return a.id, nil
	case TaskSubmitted:
		return 0, ErrTaskSubmitted
	}
	return a.allocateLocked(ctx)
}

// NewTaskID always allocates a fresh id and drops any previous one.
func (a *TaskIDAllocator) NewTaskID(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocateLocked(ctx)
}

func (a *TaskIDAllocator) allocateLocked(ctx context.Context) (int64, error) {
	created, err := CreateTasks(ctx, a.poster, CreateTaskRequest{Count: 1, Level: a.level})
	if err != nil {
		return 0, err
	}
	if len(created.TaskIDs) == 0 {
		return 0, ErrNoTaskID
	}
	a.id = created.TaskIDs[0]
	a.state = TaskIDAllocated
	return a.id, nil
}

// SubmitOptions are the optional submitTask fields.
type SubmitOptions struct {
	AssetIsolationModel string
	OutUserID           string
}

// Submit submits job under the current task id, allocating one if needed.
// Fields in job override the generated ones.
func (a *TaskIDAllocator) Submit(ctx context.Context, job map[string]any, opts SubmitOptions) (json.RawMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case TaskSubmitted:
		return nil, ErrTaskSubmitted
	case TaskNoID:
		if _, err := a.allocateLocked(ctx); err != nil {
			return nil, err
		}
	}

	payload := map[string]any{"taskId": a.id}
	if opts.AssetIsolationModel != "" {
		payload["assetIsolationModel"] = opts.AssetIsolationModel
	}
	if out := strings.TrimSpace(opts.OutUserID); out != "" {
		payload["outUserId"] = out
	}
	maps.Copy(payload, job)

	data, err := a.poster.Post(ctx, PathSubmitTask, payload)
	if err != nil {
		return nil, err
	}
	a.state = TaskSubmitted
	return data, nil
}

// CreateTaskRequest is the createTask payload.
type CreateTaskRequest struct {
	Count     int
	Level     int
	OutUserID string
	Labels    []string
}

// CreatedTasks is the createTask result.
type CreatedTasks struct {
	TaskIDs      []int64  `json:"taskIdList"`
	AliasTaskIDs []string `json:"aliasTaskIdList"`
	UserID       int64    `json:"userId"`
}

// CreateTasks allocates task ids.
func CreateTasks(ctx context.Context, p Poster, req CreateTaskRequest) (CreatedTasks, error) {
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Level == 0 {
		req.Level = TaskLevelNormal
	}
	payload := map[string]any{
		"count":         req.Count,
		"taskUserLevel": req.Level,
	}
	if req.OutUserID != "" {
		payload["outUserId"] = req.OutUserID
	}
	if len(req.Labels) > 0 {
		payload["labels"] = req.Labels
	}
	return PostAs[CreatedTasks](ctx, p, PathCreateTask, payload)
}

// StopTasks stops the given tasks.
func StopTasks(ctx context.Context, p Poster, ids ...int64) error {
	return postTaskIDs(ctx, p, PathStopTask, ids)
}

// StartTasks resumes the given tasks.
func StartTasks(ctx context.Context, p Poster, ids ...int64) error {
	return postTaskIDs(ctx, p, PathStartTask, ids)
}

// AbortTasks gives up the given tasks.
func AbortTasks(ctx context.Context, p Poster, ids ...int64) error {
	return postTaskIDs(ctx, p, PathAbortTask, ids)
}

// DeleteTasks deletes the given tasks.
func DeleteTasks(ctx context.Context, p Poster, ids ...int64) error {
	return postTaskIDs(ctx, p, PathDeleteTask, ids)
}

// FullSpeed renders the given tasks at full speed.
func FullSpeed(ctx context.Context, p Poster, ids ...int64) error {
	return postTaskIDs(ctx, p, PathFullSpeed, ids)
}

// SetOverTimeStop stops the given tasks once they run longer than seconds.
func SetOverTimeStop(ctx context.Context, p Poster, seconds int, ids ...int64) error {
	_, err := p.Post(ctx, PathSetOverTimeStop, map[string]any{
		"taskIds":  taskIDList(ids),
		"overTime": seconds,
	})
	return err
}

// UpdatePriority changes the render level of a task.
func UpdatePriority(ctx context.Context, p Poster, taskID int64, level int) error {
	_, err := p.Post(ctx, PathUpdateTaskUserLevel, map[string]any{
		"taskId":        taskID,
		"taskUserLevel": level,
	})
	return err
}

func postTaskIDs(ctx context.Context, p Poster, endpointPath string, ids []int64) error {
	_, err := p.Post(ctx, endpointPath, map[string]any{"taskIds": taskIDList(ids)})
	return err
}

func taskIDList(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// TaskListQuery filters getTaskList. PageNum and PageSize default to 1 and 20.
type TaskListQuery struct {
	PageNum       int
	PageSize      int
	StatusList    []int
	SearchKeyword string
	StartTime     string
	EndTime       string
}

// TaskSummary is one row of a task listing.
type TaskSummary struct {
	ID              int64   `json:"id"`
	Alias           string  `json:"taskAlias"`
	SceneName       string  `json:"sceneName"`
	ProjectName     string  `json:"projectName"`
	Status          int     `json:"taskStatus"`
	StatusText      string  `json:"statusText"`
	TotalFrames     int     `json:"totalFrames"`
	DoneFrames      int     `json:"doneFrames"`
	FailedFrames    int     `json:"failedFrames"`
	ExecutingFrames int     `json:"executingFrames"`
	WaitingFrames   int     `json:"waitingFrames"`
	RenderConsume   float64 `json:"renderConsume"`
	StartTime       int64   `json:"startTime"`
	CompletedDate   int64   `json:"completedDate"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	PageCount int           `json:"pageCount"`
	PageNum   int           `json:"pageNum"`
	Total     int           `json:"total"`
	Size      int           `json:"size"`
	Items     []TaskSummary `json:"items"`
}

// TaskList fetches one page of tasks.
func TaskList(ctx context.Context, p Poster, q TaskListQuery) (TaskPage, error) {
	if q.PageNum <= 0 {
		q.PageNum = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	payload := map[string]any{
		"pageNum":  q.PageNum,
		"pageSize": q.PageSize,
	}
	if len(q.StatusList) > 0 {
		payload["statusList"] = q.StatusList
	}
	if q.SearchKeyword != "" {
		payload["searchKeyword"] = q.SearchKeyword
	}
	if q.StartTime != "" {
		payload["startTime"] = q.StartTime
	}
	if q.EndTime != "" {
		payload["endTime"] = q.EndTime
	}
	return PostAs[TaskPage](ctx, p, PathGetTaskList, payload)
}
