package models

import "time"

// Semester is the academic term a subject was taken in
type Semester string

// Semester choices
const (
	SemesterFirst  Semester = "first"
	SemesterSecond Semester = "second"
	SemesterSummer Semester = "summer"
)

// ValidSemester reports whether s is a known semester
func ValidSemester(s Semester) bool {
	switch s {
	case SemesterFirst, SemesterSecond, SemesterSummer:
		return true
	}
	return false
}

// TranscriptEntry is one subject row from a transferee's Transcript of Records
type TranscriptEntry struct {
	ID            int       `json:"id"`
	AccountID     string    `json:"accountId"`
	StudentName   string    `json:"studentName"`
	SchoolName    string    `json:"schoolName"`
	SubjectCode   string    `json:"subjectCode"`
	Description   string    `json:"subjectDescription"`
	Semester      Semester  `json:"semester"`
	SchoolYear    string    `json:"schoolYear"`
	Units         float64   `json:"totalAcademicUnits"`
	FinalGrade    float64   `json:"finalGrade"`
	Remarks       string    `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsPassing reports whether the final grade is passing on the 1.0-5.0 scale
// (1.0 is highest; anything past 2.9 is a fail)
func (e *TranscriptEntry) IsPassing() bool {
	return e.FinalGrade >= 1.0 && e.FinalGrade <= 2.9
}

// SaveEntriesRequest is the body for uploading transcript entries
type SaveEntriesRequest struct {
	AccountID   string            `json:"accountId"`
	StudentName string            `json:"studentName"`
	SchoolName  string            `json:"schoolName"`
	Entries     []TranscriptEntry `json:"entries"`
}

// TranscriptStatistics summarizes an account's transcript entries
type TranscriptStatistics struct {
	TotalSubjects  int     `json:"totalSubjects"`
	PassedSubjects int     `json:"passedSubjects"`
	FailedSubjects int     `json:"failedSubjects"`
	TotalUnits     float64 `json:"totalUnits"`
	PassedUnits    float64 `json:"passedUnits"`
	FailedUnits    float64 `json:"failedUnits"`
	AverageGrade   float64 `json:"averageGrade"`
}
