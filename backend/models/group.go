package models

// Group is a one-time group created on the study service.
// Only ID matters after creation; the rest is shown to the person being invited.
type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Link     string `json:"link"`
}
