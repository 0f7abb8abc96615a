package board

import "github.com/nhle/taskboard/internal/model"

// Column is one status bucket of the board.
type Column struct {
	Status model.Status
	Tasks  []model.Task
}

// Columns holds one Column per status, in model.Statuses order.
type Columns []Column

// Partition groups tasks into the three status columns, keeping the relative
// order of tasks within each column. Empty columns are present with no tasks.
func Partition(tasks []model.Task) Columns {
	cols := make(Columns, len(model.Statuses))
	for i, st := range model.Statuses {
		cols[i] = Column{Status: st, Tasks: []model.Task{}}
	}
	for _, t := range tasks {
		i := t.Status.Index()
		if i < 0 {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	return cols
}

// Column returns the bucket for status.
func (c Columns) Column(status model.Status) Column {
	for _, col := range c {
		if col.Status == status {
			return col
		}
	}
	return Column{Status: status, Tasks: []model.Task{}}
}

// Len returns the number of tasks across all columns.
func (c Columns) Len() int {
	n := 0
	for _, col := range c {
		n += len(col.Tasks)
	}
	return n
}

// View filters tasks by query and partitions the result.
func View(tasks []model.Task, query string) Columns {
	return Partition(Filter(tasks, query))
}
