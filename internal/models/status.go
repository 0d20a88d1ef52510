package models

import "strings"

type StatusID uint

const (
	StatusToDo       StatusID = 1
	StatusInProgress StatusID = 2
	StatusDone       StatusID = 3
)

// Status is a row of the fixed task status lookup table.
type Status struct {
	ID   uint   `gorm:"primarykey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

func (Status) TableName() string {
	return "task_statuses"
}

// SeedStatuses are the only rows the status table ever holds.
var SeedStatuses = []Status{
	{ID: uint(StatusToDo), Name: "To Do"},
	{ID: uint(StatusInProgress), Name: "In Progress"},
	{ID: uint(StatusDone), Name: "Done"},
}

// LookupStatusByName resolves a status name, ignoring case and surrounding
// whitespace.
func LookupStatusByName(name string) (Status, bool) {
	name = strings.TrimSpace(name)
	for _, s := range SeedStatuses {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Status{}, false
}

// LookupStatus resolves a status id.
func LookupStatus(id uint) (Status, bool) {
	for _, s := range SeedStatuses {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}
