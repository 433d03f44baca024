package match

import (
	"strconv"
	"strings"
)

// Preference tags accepted by the match service.
const (
	NotImportant      = "not_important"
	SomewhatImportant = "somewhat_important"
	VeryImportant     = "very_important"

	// location_preference only
	LocationSpecific = "specific"
	// fee_preference only
	FeeMaxLimit = "max_limit"
)

// Form is the flat preference form as submitted by the frontend. Free-text
// list fields (interests, preferred locations) arrive comma separated; the
// fee bound arrives as raw text.
type Form struct {
	FieldOfStudy          string `json:"field_of_study"`
	DegreeLevel           string `json:"degree_level"`
	Interests             string `json:"interests"`
	LocationPreference    string `json:"location_preference"`
	PreferredLocations    string `json:"preferred_locations"`
	FeePreference         string `json:"fee_preference"`
	MaxFees               string `json:"max_fees"`
	RankingImportance     string `json:"ranking_importance"`
	ScholarshipImportance string `json:"scholarship_importance"`
	ResearchImportance    string `json:"research_importance"`
	FacultyImportance     string `json:"faculty_importance"`
	StudentLifeImportance string `json:"student_life_importance"`
}

// Request is the normalized payload sent to the match service.
type Request struct {
	FieldOfStudy          string   `json:"field_of_study"`
	DegreeLevel           string   `json:"degree_level"`
	Interests             []string `json:"interests"`
	LocationPreference    string   `json:"location_preference"`
	PreferredLocations    []string `json:"preferred_locations"`
	FeePreference         string   `json:"fee_preference"`
	MaxFees               *int     `json:"max_fees"`
	RankingImportance     string   `json:"ranking_importance"`
	ScholarshipImportance string   `json:"scholarship_importance"`
	ResearchImportance    string   `json:"research_importance"`
	FacultyImportance     string   `json:"faculty_importance"`
	StudentLifeImportance string   `json:"student_life_importance"`
}

// BuildRequest normalizes a preference form into a match request.
// Preferred locations are only carried when the user asked for specific
// locations; the fee bound is only parsed when fees matter and the field is
// non-empty. All other fields pass through verbatim.
func BuildRequest(f Form) Request {
	locations := []string{}
	if f.LocationPreference == LocationSpecific {
		locations = splitList(f.PreferredLocations)
	}

	var maxFees *int
	if f.FeePreference != NotImportant && strings.TrimSpace(f.MaxFees) != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(f.MaxFees)); err == nil {
			maxFees = &n
		}
	}

	return Request{
		FieldOfStudy:          f.FieldOfStudy,
		DegreeLevel:           f.DegreeLevel,
		Interests:             splitList(f.Interests),
		LocationPreference:    f.LocationPreference,
		PreferredLocations:    locations,
		FeePreference:         f.FeePreference,
		MaxFees:               maxFees,
		RankingImportance:     f.RankingImportance,
		ScholarshipImportance: f.ScholarshipImportance,
		ResearchImportance:    f.ResearchImportance,
		FacultyImportance:     f.FacultyImportance,
		StudentLifeImportance: f.StudentLifeImportance,
	}
}

// splitList turns a comma separated field into trimmed tokens, dropping
// empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
