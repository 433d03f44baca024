package match

import "encoding/json"

// Response is the ranked result list returned by the match service.
type Response struct {
	TotalEvaluated int      `json:"total_evaluated"`
	Summary        string   `json:"summary,omitempty"`
	Matches        []Record `json:"matches"`
}

// Record is a single ranked university match. Enrichment fields are
// optional; absent or malformed ones decode to nil so rendering can omit
// the section instead of failing.
type Record struct {
	Rank               int             `json:"rank"`
	Name               string          `json:"name"`
	Location           *Location       `json:"location,omitempty"`
	UniversityRanking  *Ranking        `json:"university_ranking,omitempty"`
	TotalScore         float64         `json:"total_score"`
	Justification      string          `json:"justification"`
	MatchingPrograms   StringList      `json:"matching_programs,omitempty"`
	ScoreBreakdown     ScoreBreakdown  `json:"score_breakdown"`
	Scholarships       ScholarshipList `json:"scholarships,omitempty"`
	ResearchHighlights StringList      `json:"research_highlights,omitempty"`
	FacultyHighlights  StringList      `json:"faculty_highlights,omitempty"`
}

// Location places a university.
type Location struct {
	City   string `json:"city,omitempty"`
	Region string `json:"region,omitempty"`
}

// Ranking carries league-table positions.
type Ranking struct {
	UKRank int `json:"uk_rank,omitempty"`
}

// Scholarship is a funding option attached to a match.
type Scholarship struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
}

// StringList is a []string that tolerates malformed upstream payloads: a
// bare string decodes as a single entry and anything else decodes to nil.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}

	*l = nil
	return nil
}

// ScoreBreakdown maps scoring factors to percentages, decoding malformed
// payloads to nil.
type ScoreBreakdown map[string]float64

func (b *ScoreBreakdown) UnmarshalJSON(data []byte) error {
	var scores map[string]float64
	if err := json.Unmarshal(data, &scores); err != nil {
		*b = nil
		return nil
	}
	*b = scores
	return nil
}

// ScholarshipList is a []Scholarship that decodes malformed payloads to nil.
type ScholarshipList []Scholarship

func (l *ScholarshipList) UnmarshalJSON(data []byte) error {
	var items []Scholarship
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	*l = items
	return nil
}
