package rayvision

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestTaskIDAllocator_Lifecycle(t *testing.T) {
	t.Parallel()

	fake := newFakePoster().
		reply(PathCreateTask, `{"taskIdList":[1658434],"aliasTaskIdList":["2W1658434"],"userId":100093088}`).
		reply(PathCreateTask, `{"taskIdList":[1658435]}`).
		reply(PathSubmitTask, `{}`)
	a := NewTaskIDAllocator(fake, 0)
	ctx := context.Background()

	if a.State() != TaskNoID {
		t.Fatalf("initial state = %v, want %v", a.State(), TaskNoID)
	}
	for range 2 {
		id, err := a.TaskID(ctx)
		if err != nil {
			t.Fatalf("TaskID returned error: %v", err)
		}
		if id != 1658434 {
			t.Fatalf("TaskID = %d, want 1658434", id)
		}
	}
	if n := len(fake.callsTo(PathCreateTask)); n != 1 {
		t.Fatalf("createTask calls = %d, want 1", n)
	}
	create := fake.callsTo(PathCreateTask)[0].payload
	if create["count"] != 1 || create["taskUserLevel"] != TaskLevelNormal {
		t.Fatalf("createTask payload = %v", create)
	}

	if _, err := a.Submit(ctx, map[string]any{"cgId": 2000}, SubmitOptions{OutUserID: " ext "}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	submit := fake.callsTo(PathSubmitTask)[0].payload
	if submit["taskId"] != int64(1658434) || submit["cgId"] != 2000 || submit["outUserId"] != "ext" {
		t.Fatalf("submitTask payload = %v", submit)
	}
	if a.State() != TaskSubmitted {
		t.Fatalf("state after submit = %v, want %v", a.State(), TaskSubmitted)
	}

	if _, err := a.TaskID(ctx); !errors.Is(err, ErrTaskSubmitted) {
		t.Fatalf("TaskID after submit error = %v, want ErrTaskSubmitted", err)
	}
	if _, err := a.Submit(ctx, nil, SubmitOptions{}); !errors.Is(err, ErrTaskSubmitted) {
		t.Fatalf("second Submit error = %v, want ErrTaskSubmitted", err)
	}

	id, err := a.NewTaskID(ctx)
	if err != nil {
		t.Fatalf("NewTaskID returned error: %v", err)
	}
	if id != 1658435 || a.State() != TaskIDAllocated {
		t.Fatalf("NewTaskID = %d state %v, want 1658435 allocated", id, a.State())
	}
}

func TestTaskIDAllocator_EmptyIDList(t *testing.T) {
	t.Parallel()

	fake := newFakePoster().reply(PathCreateTask, `{"taskIdList":[]}`)
	a := NewTaskIDAllocator(fake, TaskLevelHigh)
	if _, err := a.TaskID(context.Background()); !errors.Is(err, ErrNoTaskID) {
		t.Fatalf("TaskID error = %v, want ErrNoTaskID", err)
	}
	if a.State() != TaskNoID {
		t.Fatalf("state = %v, want %v", a.State(), TaskNoID)
	}
}

func TestTaskIDAllocator_FailedSubmitKeepsID(t *testing.T) {
	t.Parallel()

	fake := newFakePoster().
		reply(PathCreateTask, `{"taskIdList":[7]}`).
		fail(PathSubmitTask, &APIError{Code: 500, Message: "busy"}).
		reply(PathSubmitTask, `{}`)
	a := NewTaskIDAllocator(fake, 0)
	ctx := context.Background()

	if _, err := a.Submit(ctx, nil, SubmitOptions{}); err == nil {
		t.Fatalf("Submit succeeded, want APIError")
	}
	if a.State() != TaskIDAllocated {
		t.Fatalf("state after failed submit = %v, want %v", a.State(), TaskIDAllocated)
	}
	if _, err := a.Submit(ctx, nil, SubmitOptions{}); err != nil {
		t.Fatalf("retry Submit returned error: %v", err)
	}
	if n := len(fake.callsTo(PathCreateTask)); n != 1 {
		t.Fatalf("createTask calls = %d, want 1", n)
	}
}

func TestTaskControl_SendsTaskIDs(t *testing.T) {
	t.Parallel()

	fake := newFakePoster()
	ctx := context.Background()
	ops := map[string]func() error{
		PathStopTask:   func() error { return StopTasks(ctx, fake, 1, 2) },
		PathStartTask:  func() error { return StartTasks(ctx, fake, 1, 2) },
		PathAbortTask:  func() error { return AbortTasks(ctx, fake, 1, 2) },
		PathDeleteTask: func() error { return DeleteTasks(ctx, fake, 1, 2) },
		PathFullSpeed:  func() error { return FullSpeed(ctx, fake, 1, 2) },
	}
	for path, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("%s returned error: %v", EndpointName(path), err)
		}
		calls := fake.callsTo(path)
		if len(calls) != 1 {
			t.Fatalf("%s calls = %d, want 1", EndpointName(path), len(calls))
		}
		ids, _ := calls[0].payload["taskIds"].([]int64)
		if !slices.Equal(ids, []int64{1, 2}) {
			t.Fatalf("%s payload = %v", EndpointName(path), calls[0].payload)
		}
	}
}

func TestTaskList_DefaultsAndDecode(t *testing.T) {
	t.Parallel()

	fake := newFakePoster().reply(PathGetTaskList, `{
		"pageCount": 1, "pageNum": 1, "total": 1, "size": 1,
		"items": [{"id": 18278, "taskAlias": "P18278", "sceneName": "shot", "taskStatus": 25,
			"statusText": "render_task_status_25", "totalFrames": 10, "doneFrames": 4,
			"abortFrames": null, "executingFrames": null}]
	}`)
	page, err := TaskList(context.Background(), fake, TaskListQuery{StatusList: []int{25}})
	if err != nil {
		t.Fatalf("TaskList returned error: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("page = %#v", page)
	}
	item := page.Items[0]
	if item.ID != 18278 || item.Alias != "P18278" || item.Status != 25 || item.DoneFrames != 4 {
		t.Fatalf("item = %#v", item)
	}

	payload := fake.callsTo(PathGetTaskList)[0].payload
	if payload["pageNum"] != 1 || payload["pageSize"] != 20 {
		t.Fatalf("payload = %v, want default paging", payload)
	}
	if _, ok := payload["searchKeyword"]; ok {
		t.Fatalf("empty filters should be omitted: %v", payload)
	}
}

func TestTaskIDState_String(t *testing.T) {
	t.Parallel()

	if TaskSubmitted.String() != "submitted" || TaskIDState(9).String() != "TaskIDState(9)" {
		t.Fatalf("unexpected state names")
	}
}
