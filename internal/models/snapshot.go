package models

// Snapshot is the persisted-state layout: two independent JSON documents,
// no schema versioning. Used by the admin CLI for export and import.
type Snapshot struct {
	Users      []User      `json:"users"`
	Grievances []Grievance `json:"grievances"`
}
