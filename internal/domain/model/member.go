// Package model contains domain models passed between layers.
package model

import "strings"

// MemberID is the unique key of a group member (the "id" in info.json).
type MemberID string

// Degree levels recognized by the academic role table.
const (
	DegreeBachelors = "Bachelors"
	DegreeMasters   = "Masters"
	DegreePhD       = "PhD"
)

// MemberInfo is a member profile from members/<dir>/info.json.
type MemberInfo struct {
	ID          MemberID `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	NickName    string   `json:"nick_name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Institution string   `json:"institution,omitempty"`
	Department  string   `json:"department,omitempty"`
	ImagePath   string   `json:"image_path,omitempty"`
	Bio         string   `json:"bio,omitempty"`

	// Social is attached from jsons/social_links.json.
	Social SocialLinks `json:"-"`
	// Dir is the member's directory name in the data tree.
	Dir string `json:"-"`
}

// FullName is the display name: nick name (when set) or first name, then last name.
func (m MemberInfo) FullName() string {
	first := strings.TrimSpace(m.NickName)
	if first == "" {
		first = strings.TrimSpace(m.FirstName)
	}
	return strings.TrimSpace(first + " " + strings.TrimSpace(m.LastName))
}

// SocialLinks maps a platform name (github, linkedin, orcid, ...) to a URL.
type SocialLinks map[string]string

// EducationRecord is one entry of jsons/education.json.
type EducationRecord struct {
	MemberID    MemberID `json:"-"`
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Field       string   `json:"field,omitempty"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date"`
	Description string   `json:"description,omitempty"`
}

// ExperienceRecord is one entry of jsons/experiences.json.
type ExperienceRecord struct {
	MemberID    MemberID `json:"-"`
	Group       string   `json:"group"`
	Role        string   `json:"role"`
	Institution string   `json:"institution,omitempty"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date"`
	Description string   `json:"description,omitempty"`
}

// ProjectRecord is one entry of jsons/projects.json.
type ProjectRecord struct {
	MemberID    MemberID `json:"-"`
	Title       string   `json:"project_title"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date"`
}

// Award is one entry of jsons/awards.json.
type Award struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	Date        Date   `json:"date"`
	Description string `json:"description,omitempty"`
}

// Outreach is one entry of jsons/outreach.json.
type Outreach struct {
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
	Date         Date   `json:"date"`
	Description  string `json:"description,omitempty"`
}

// Document is one entry of jsons/documents.json (e.g. a CV link).
type Document struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}
