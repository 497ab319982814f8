package model

import "time"

// ApplicationRecord is a persisted assessment: the applicant input together
// with the pipeline output. Records are created once and never mutated.
type ApplicationRecord struct {
	ID         int64
	Applicant  Applicant
	Assessment Assessment
	CreatedAt  time.Time
}

// NewApplicationRecord pairs an applicant with its assessment. ID and
// CreatedAt are assigned by the ledger on append.
func NewApplicationRecord(a Applicant, result Assessment) ApplicationRecord {
	return ApplicationRecord{Applicant: a, Assessment: result}
}
