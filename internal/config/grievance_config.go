package config

import "time"

const (
	// Duplicate detection
	SimilarityThreshold = 0.85

	// Grievance IDs: "GRV" + zero-padded sequence ("GRV001", "GRV002", ...)
	GrievanceIDPrefix = "GRV"
	GrievanceIDWidth  = 3

	// Misuse strikes
	StrikeReviewThreshold = 3

	// Voice intake
	ParseTimeout  = 30 * time.Second
	SubmitTimeout = 30 * time.Second

	// Fixed note texts used when seeding and appending history
	FiledNote = "Grievance submitted by citizen"

	// Substituted for AI output whenever the assistant is missing or failing
	AIUnavailableMessage = "AI assistance is currently unavailable. Please try again later."
)

// Departments is the closed set of government departments a grievance can be
// filed against. Order matters: fuzzy reconciliation takes the first match.
var Departments = []string{
	"Municipal Corporation",
	"Electricity Board",
	"Water Supply Department",
	"Public Works Department",
	"Police Department",
	"Transport Department",
	"Health Department",
}

// Rejection reasons an admin can attach when rejecting a grievance.
// Only ReasonFalseComplaint carries a misuse strike for the filer.
const (
	ReasonFalseComplaint       = "False Complaint"
	ReasonDuplicate            = "Duplicate Complaint"
	ReasonInsufficientEvidence = "Insufficient Evidence"
	ReasonOther                = "Other"
)

// RejectionReasons lists every reason the admin UI may offer.
var RejectionReasons = []string{
	ReasonFalseComplaint,
	ReasonDuplicate,
	ReasonInsufficientEvidence,
	ReasonOther,
}

// IsKnownDepartment reports whether name is byte-identical to a fixed department.
func IsKnownDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}
