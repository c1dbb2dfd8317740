package tasklist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"tally/internal/task"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory Store that records every call it receives.
type fakeStore struct {
	mu sync.Mutex

	tasks  []task.Task
	nextID int

	calls   []string
	updates []task.Task
	failOn  map[string]bool
}

func newFakeStore(tasks ...task.Task) *fakeStore {
	return &fakeStore{
		tasks:  slices.Clone(tasks),
		nextID: 100,
		failOn: make(map[string]bool),
	}
}

func (s *fakeStore) fail(op string) { s.failOn[op] = true }

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeStore) record(op string) error {
	s.calls = append(s.calls, op)
	if s.failOn[op] {
		return errStoreDown
	}
	return nil
}

func (s *fakeStore) FetchAll(_ context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("fetch"); err != nil {
		return nil, err
	}
	return slices.Clone(s.tasks), nil
}

func (s *fakeStore) Create(_ context.Context, in task.NewTask) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("create"); err != nil {
		return task.Task{}, err
	}
	s.nextID++
	t := task.Task{
		ID:          task.ID(fmt.Sprint(s.nextID)),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   in.CreatedAt,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		IsCompleted: in.IsCompleted,
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *fakeStore) SetCompleted(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("update"); err != nil {
		return err
	}
	s.updates = append(s.updates, t)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id task.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("delete"); err != nil {
		return err
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
	return nil
}
