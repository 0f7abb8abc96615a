package store

import (
	"time"

	"github.com/nhle/taskboard/internal/model"
)

type seedTask struct {
	name        string
	description string
	priority    model.Priority
	status      model.Status
	tags        []string
	dueInDays   int
}

var demoTasks = []seedTask{
	{
		name:        "Investigate Penguin's Smuggling Ring",
		description: "Suspicious activity reported at the docks. Gather intel on Cobblepot's latest operation.",
		priority:    model.PriorityHigh,
		status:      model.StatusTodo,
		tags:        []string{"investigation", "Penguin", "docks"},
		dueInDays:   3,
	},
	{
		name:        "Analyze Joker's Laughing Gas Sample",
		description: "New variant of Joker toxin recovered. Identify components and develop antidote.",
		priority:    model.PriorityHigh,
		status:      model.StatusTodo,
		tags:        []string{"forensics", "Joker", "toxin", "lab"},
		dueInDays:   5,
	},
	{
		name:        "Repair Batmobile",
		description: "Minor damage sustained during last patrol. Needs new tires and armor reinforcement.",
		priority:    model.PriorityMedium,
		status:      model.StatusInProgress,
		tags:        []string{"maintenance", "Batmobile", "vehicle"},
		dueInDays:   1,
	},
	{
		name:        "Tail Two-Face's Goons",
		description: "Observe movements of Two-Face's crew near the old Janus Cosmetics building.",
		priority:    model.PriorityMedium,
		status:      model.StatusInProgress,
		tags:        []string{"surveillance", "Two-Face", "Janus"},
		dueInDays:   0,
	},
	{
		name:        "Meet with Commissioner Gordon",
		description: "Discussed recent spike in organized crime and coordinated GCPD efforts.",
		priority:    model.PriorityMedium,
		status:      model.StatusDone,
		tags:        []string{"meeting", "GCPD", "Gordon"},
		dueInDays:   -2,
	},
	{
		name:        "Apprehend Catwoman (Attempt #3)",
		description: "Successfully recovered the stolen diamond from Selina Kyle. She slipped away... again.",
		priority:    model.PriorityLow,
		status:      model.StatusDone,
		tags:        []string{"apprehension", "Catwoman", "theft", "recovery"},
		dueInDays:   -1,
	},
}

// Seed returns the demo task set with due dates relative to now and a fresh
// id from newID for every task.
func Seed(now time.Time, newID func() string) []model.Task {
	today := model.Date(now)
	tasks := make([]model.Task, 0, len(demoTasks))
	for _, s := range demoTasks {
		due := today.AddDate(0, 0, s.dueInDays)
		tasks = append(tasks, model.Task{
			ID:          newID(),
			Name:        s.name,
			Description: s.description,
			DueDate:     &due,
			Priority:    s.priority,
			Status:      s.status,
			Tags:        append([]string(nil), s.tags...),
		})
	}
	return tasks
}
