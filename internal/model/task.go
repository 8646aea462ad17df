package model

// Task is the domain model for a todo entry.
// ID is assigned by the store and never changes; Title is set once at creation.
type Task struct {
	ID        int64  `json:"id" db:"taskId"`
	Title     string `json:"title" db:"title"`
	Completed bool   `json:"completed" db:"isCompleted"`
}

// Stats counts completed and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Find returns the task with the given id, if present.
func Find(tasks []Task, id int64) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
