package models

// User is the study-service account identified by a one-time group.
// It is carried between requests inside a signed session token.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Member is one entry of a group's membership list.
type Member struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}
