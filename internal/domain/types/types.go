// Package types contains common types used across the application
package types

import "github.com/okian/labsite/internal/domain/model"

// CurrentMember is a row of the current-members table
type CurrentMember struct {
	ID           model.MemberID   `json:"id"`
	Role         string           `json:"role"`
	ProjectTitle string           `json:"project_title"`
	Rank         int              `json:"rank"`
	Ranked       bool             `json:"ranked"`
	Info         model.MemberInfo `json:"info"`
}

// AlumniMember is a row of the alumni table: id, role and name only
type AlumniMember struct {
	ID       model.MemberID `json:"id"`
	Role     string         `json:"role"`
	FullName string         `json:"full_name"`
}
