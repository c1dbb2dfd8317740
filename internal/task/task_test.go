package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskDecodesNumericAndStringIDs(t *testing.T) {
	input := `[
		{"id": 7, "title": "Pay rent", "description": "", "created_at": "2024-03-01T09:00:00Z",
		 "deadline": "2024-03-05T17:00:00Z", "priority": 3, "is_completed": false},
		{"id": "a1b2", "title": "Call mom", "description": "sunday", "created_at": "2024-03-02T09:00:00Z",
		 "deadline": "2024-03-03T10:30:00Z", "priority": 1, "is_completed": true}
	]`

	var tasks []Task
	if err := json.Unmarshal([]byte(input), &tasks); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "7" {
		t.Errorf("expected id 7, got %q", tasks[0].ID)
	}
	if tasks[1].ID != "a1b2" {
		t.Errorf("expected id a1b2, got %q", tasks[1].ID)
	}
	if tasks[0].Priority != High {
		t.Errorf("expected High, got %v", tasks[0].Priority)
	}
	if !tasks[1].IsCompleted {
		t.Errorf("expected second task completed")
	}
	want := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)
	if !tasks[0].Deadline.Equal(want) {
		t.Errorf("expected deadline %v, got %v", want, tasks[0].Deadline)
	}
}

func TestTaskEncodesIDAsString(t *testing.T) {
	data, err := json.Marshal(Task{ID: "42", Title: "x", Priority: Low})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if raw["id"] != "42" {
		t.Errorf("expected string id, got %#v", raw["id"])
	}
}

func TestNewTaskUsesCreateBodyNames(t *testing.T) {
	data, err := json.Marshal(NewTask{Title: "x", Priority: Medium})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"title", "description", "deadline", "priority", "createdAt", "is_completed"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := raw["created_at"]; ok {
		t.Errorf("create body must not carry created_at")
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"High", High, false},
		{"medium", Medium, false},
		{" low ", Low, false},
		{"3", High, false},
		{"1", Low, false},
		{"h", High, false},
		{"0", 0, true},
		{"4", 0, true},
		{"urgent", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePriority(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePriority(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range Priorities {
		if !p.Valid() {
			t.Errorf("%v should be valid", p)
		}
	}
	if Priority(0).Valid() || Priority(4).Valid() {
		t.Errorf("out of range priorities must be invalid")
	}
}
