package taskservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/todoevo/backend/tasksvc"
	"github.com/todoevo/backend/validate"
)

type fakeTaskRepository struct {
	nextID uint64
	tasks  map[uint64]tasksvc.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[uint64]tasksvc.Task)}
}

func (r *fakeTaskRepository) Create(_ context.Context, task *tasksvc.Task) error {
	r.nextID++
	task.ID = r.nextID
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepository) FindAll(_ context.Context, userID uint64) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}
	for _, t := range r.tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *fakeTaskRepository) Find(_ context.Context, userID, taskID uint64) (tasksvc.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != userID {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return t, nil
}

func (r *fakeTaskRepository) Update(_ context.Context, task *tasksvc.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return tasksvc.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepository) Delete(_ context.Context, userID, taskID uint64) error {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != userID {
		return tasksvc.ErrTaskNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

const (
	alice uint64 = 1
	bob   uint64 = 2
)

func TestCreateTask(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, alice, "Buy milk", "2 liters")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == 0 {
		t.Error("created task has no id")
	}
	if task.UserID != alice {
		t.Errorf("owner = %d, want %d", task.UserID, alice)
	}
	if task.Completed {
		t.Error("new task is completed")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestCreateTaskTitleBounds(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	if _, err := svc.CreateTask(ctx, alice, strings.Repeat("a", 200), ""); err != nil {
		t.Fatalf("200-character title rejected: %v", err)
	}

	var ve *validate.Error
	if _, err := svc.CreateTask(ctx, alice, strings.Repeat("a", 201), ""); !errors.As(err, &ve) {
		t.Fatalf("201-character title err = %v, want *validate.Error", err)
	}
	if _, err := svc.CreateTask(ctx, alice, "   ", ""); !errors.As(err, &ve) {
		t.Fatalf("whitespace title err = %v, want *validate.Error", err)
	}
}

func TestCreateTaskTrimsTitle(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())

	task, err := svc.CreateTask(context.Background(), alice, "  Buy milk  ", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("title = %q, want %q", task.Title, "Buy milk")
	}
}

func TestTasksScopedToOwner(t *testing.T) {
	repo := newFakeTaskRepository()
	svc := NewBasicService(repo)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		if _, err := svc.CreateTask(ctx, alice, title, ""); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	if _, err := svc.CreateTask(ctx, bob, "bob's task", ""); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	tasks, err := svc.Tasks(ctx, alice)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("len = %d, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != alice {
			t.Fatalf("task %d owned by %d leaked into alice's list", task.ID, task.UserID)
		}
	}
}

func TestTasksEmpty(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())

	tasks, err := svc.Tasks(context.Background(), alice)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("want empty slice, got %#v", tasks)
	}
}

func TestTaskCrossOwnerIsNotFound(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "private", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, foreignErr := svc.Task(ctx, bob, created.ID)
	_, missingErr := svc.Task(ctx, bob, 9999)

	if !errors.Is(foreignErr, tasksvc.ErrTaskNotFound) {
		t.Fatalf("foreign task err = %v, want ErrTaskNotFound", foreignErr)
	}
	if !errors.Is(missingErr, tasksvc.ErrTaskNotFound) {
		t.Fatalf("missing task err = %v, want ErrTaskNotFound", missingErr)
	}
	// The two causes must be indistinguishable.
	if foreignErr.Error() != missingErr.Error() {
		t.Fatalf("errors differ: %q vs %q", foreignErr, missingErr)
	}
}

func TestUpdateTask(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "Buy milk", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	title := "Buy milk and eggs"
	completed := true
	updated, err := svc.UpdateTask(ctx, alice, created.ID, &title, nil, &completed)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if !updated.Completed {
		t.Error("completed not applied")
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Error("updated_at before created_at")
	}
}

func TestUpdateTaskEmptyTitleLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeTaskRepository()
	svc := NewBasicService(repo)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "Buy milk", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	empty := ""
	var ve *validate.Error
	if _, err := svc.UpdateTask(ctx, alice, created.ID, &empty, nil, nil); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *validate.Error", err)
	}

	stored, err := svc.Task(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if stored.Title != "Buy milk" {
		t.Fatalf("stored title changed to %q", stored.Title)
	}
}

func TestUpdateTaskCrossOwner(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "private", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	title := "stolen"
	if _, err := svc.UpdateTask(ctx, bob, created.ID, &title, nil, nil); !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}

	stored, _ := svc.Task(ctx, alice, created.ID)
	if stored.Title != "private" {
		t.Fatalf("foreign update mutated the row: %q", stored.Title)
	}
}

func TestToggleTaskIdempotentPair(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "Buy milk", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	once, err := svc.ToggleTask(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !once.Completed {
		t.Fatal("first toggle did not complete the task")
	}

	twice, err := svc.ToggleTask(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if twice.Completed != created.Completed {
		t.Fatal("two toggles did not restore the original state")
	}
}

func TestToggleTaskCrossOwner(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "private", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := svc.ToggleTask(ctx, bob, created.ID); !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTask(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "Buy milk", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := svc.DeleteTask(ctx, alice, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := svc.Task(ctx, alice, created.ID); !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Fatal("task still readable after delete")
	}
	// Deleting again reports the same error as deleting a row that never existed.
	if err := svc.DeleteTask(ctx, alice, created.ID); !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Fatalf("second delete err = %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTaskCrossOwner(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "private", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := svc.DeleteTask(ctx, bob, created.ID); !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.Task(ctx, alice, created.ID); err != nil {
		t.Fatal("foreign delete removed the row")
	}
}

func TestCreateThenGetPopulatesAssignedFields(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, alice, "Buy milk", "2 liters")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := svc.Task(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if got.Title != created.Title || got.Description != created.Description ||
		got.Completed != created.Completed || got.UserID != created.UserID {
		t.Fatalf("stored task differs: %#v vs %#v", got, created)
	}
	if got.ID == 0 || got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("assigned fields not populated")
	}
}
