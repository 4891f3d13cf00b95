package gorm

import (
	"context"
	"errors"

	"github.com/todoevo/backend/tasksvc"
	stdgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(ctx context.Context, task *tasksvc.Task) error {
	return t.db.WithContext(ctx).Create(task).Error
}

func (t *taskRepository) FindAll(ctx context.Context, userID uint64) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}
	result := t.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tasks)

	return tasks, result.Error
}

func (t *taskRepository) Find(ctx context.Context, userID, taskID uint64) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := t.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).First(&task)
	if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}

	return task, result.Error
}

func (t *taskRepository) Update(ctx context.Context, task *tasksvc.Task) error {
	result := t.db.WithContext(ctx).
		Model(&tasksvc.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}

func (t *taskRepository) Delete(ctx context.Context, userID, taskID uint64) error {
	result := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&tasksvc.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}
