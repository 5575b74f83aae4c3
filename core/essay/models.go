package essay

import (
	"time"

	"github.com/appredator/backend/core"
)

// Submission is a student's essay for a theme activity. One per
// (activity, student); resubmission is rejected, not versioned.
type Submission struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	StudentID  string    `json:"student_id"`
	Body       string    `json:"body"`
	Grade      *Grade    `json:"grade,omitempty"` // nil until corrected
	CreatedAt  time.Time `json:"created_at"`      // UTC
	UpdatedAt  time.Time `json:"updated_at"`      // UTC
}

func (s Submission) IsGraded() bool { return s.Grade != nil }

// Grade is a corrector's verdict, scored per competency on the official
// 0-200 scale.
type Grade struct {
	CorrectorID string    `json:"corrector_id"`
	Competency1 int       `json:"competency_1"`
	Competency2 int       `json:"competency_2"`
	Competency3 int       `json:"competency_3"`
	Competency4 int       `json:"competency_4"`
	Competency5 int       `json:"competency_5"`
	Feedback    string    `json:"feedback,omitempty"`
	GradedAt    time.Time `json:"graded_at"` // UTC
}

// Total sums the five competencies, 0-1000.
func (g Grade) Total() int {
	return g.Competency1 + g.Competency2 + g.Competency3 + g.Competency4 + g.Competency5
}

// NewSubmission contains information needed to submit an essay.
type NewSubmission struct {
	ActivityID string `json:"activity_id" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

func (ns *NewSubmission) Validate() error {
	ns.ActivityID = core.CleanString(ns.ActivityID)
	ns.Body = core.CleanString(ns.Body)
	return core.Validate.Struct(ns)
}

// GradeInput contains a corrector's scores for a submission.
type GradeInput struct {
	Competency1 int    `json:"competency_1" validate:"min=0,max=200"`
	Competency2 int    `json:"competency_2" validate:"min=0,max=200"`
	Competency3 int    `json:"competency_3" validate:"min=0,max=200"`
	Competency4 int    `json:"competency_4" validate:"min=0,max=200"`
	Competency5 int    `json:"competency_5" validate:"min=0,max=200"`
	Feedback    string `json:"feedback"`
}

func (gi *GradeInput) Validate() error {
	gi.Feedback = core.CleanString(gi.Feedback)
	return core.Validate.Struct(gi)
}

type QueryFilter struct {
	ActivityID   string `query:"activity_id"`
	StudentID    string `query:"student_id"`
	UngradedOnly bool   `query:"ungraded_only"`
}

func (qf *QueryFilter) Clean() {
	qf.ActivityID = core.CleanString(qf.ActivityID)
	qf.StudentID = core.CleanString(qf.StudentID)
}
