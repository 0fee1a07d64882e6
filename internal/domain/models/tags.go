// internal/domain/models/tags.go
package models

// Canonical tag labels.
//
// Tags are free text in storage; these are the values the upload form and
// the catalog screens offer as chips.
const (
	TagNotes          = "Notes"
	TagPreviousPapers = "Previous Papers"
	TagMST            = "MST"
	TagAssignments    = "Assignments"
	TagLabReports     = "Lab Reports"
)

// UploadTags are the tags a user can attach when uploading a document.
var UploadTags = []string{
	TagNotes,
	TagPreviousPapers,
	TagMST,
	TagAssignments,
}

// HomeTags are the chips shown on the home screen.
var HomeTags = []string{
	TagNotes,
	TagPreviousPapers,
	TagMST,
	TagAssignments,
	TagLabReports,
}

// PaperYears are the year chips on the previous-year papers screen.
var PaperYears = []string{"2024", "2023", "2022", "2021", "2020"}

// MSTSemesters are the exam chips on the MST papers screen.
var MSTSemesters = []string{"MST-1", "MST-2", "MST-3", "End Sem"}
