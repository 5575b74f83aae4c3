package essay

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("submission not found")
	ErrNotEssayActivity = errors.New("activity does not accept essays")
	ErrActivityNotOpen  = errors.New("activity is not open for submissions")
	ErrFeatureDisabled  = errors.New("essay themes are not part of the student's plan")
	ErrAlreadySubmitted = errors.New("essay already submitted for this activity")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		// GetSubmissionByActivityAndStudent returns ErrNotFound when the
		// student never submitted for the activity.
		GetSubmissionByActivityAndStudent(ctx context.Context, activityID, studentID string) (Submission, error)
		// FilterSubmissions applies AND operation on available QueryFilter fields.
		FilterSubmissions(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Submission, error)
		SetGrade(ctx context.Context, id string, grade Grade) (Submission, error)
		DeleteSubmissionsByID(ctx context.Context, ids ...string) error
	}

	// ActivityGetter is the slice of the activity service submissions need.
	ActivityGetter interface {
		GetByID(ctx context.Context, id string) (activity.Activity, error)
	}

	// EntitlementChecker is the slice of the plan service submissions need.
	EntitlementChecker interface {
		IsEnabled(ctx context.Context, studentID, feature string) (bool, error)
	}

	// UserGetter resolves a student's account for grade notifications.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo        Repository
		activitySvc ActivityGetter
		planSvc     EntitlementChecker
		usrSvc      UserGetter
		mailSvc     core.EmailService
	}
)

func NewService(repo Repository, activitySvc ActivityGetter, planSvc EntitlementChecker, usrSvc UserGetter, mailSvc core.EmailService) *Service {
	return &Service{
		repo:        repo,
		activitySvc: activitySvc,
		planSvc:     planSvc,
		usrSvc:      usrSvc,
		mailSvc:     mailSvc,
	}
}

// Submit records a student's essay for a theme activity. Every gate is
// re-checked here, not trusted from the client: the activity must accept
// essays and be open right now, the student's plan must include themes,
// and they must not have submitted already.
func (svc *Service) Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	act, err := svc.activitySvc.GetByID(ctx, ns.ActivityID)
	if err != nil {
		return Submission{}, err
	}
	if act.Kind != activity.KindEssay {
		return Submission{}, ErrNotEssayActivity
	}

	now := nowFunc().UTC()
	if act.StatusAt(now) != activity.StatusOpen {
		return Submission{}, ErrActivityNotOpen
	}

	enabled, err := svc.planSvc.IsEnabled(ctx, studentID, plan.FeatureThemes)
	if err != nil {
		return Submission{}, errors.Wrap(err, "checking entitlement")
	}
	if !enabled {
		return Submission{}, ErrFeatureDisabled
	}

	if _, err = svc.repo.GetSubmissionByActivityAndStudent(ctx, ns.ActivityID, studentID); err == nil {
		return Submission{}, ErrAlreadySubmitted
	} else if errors.Cause(err) != ErrNotFound {
		return Submission{}, errors.Wrap(err, "checking previous submission")
	}

	return svc.repo.CreateSubmission(ctx, Submission{
		ActivityID: ns.ActivityID,
		StudentID:  studentID,
		Body:       ns.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Submission, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterSubmissions(ctx, *filter, ordering...)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubmissionsByID(ctx, ids...)
}

// GradeSubmission records a corrector's scores and notifies the student.
// Regrading overwrites the previous grade.
func (svc *Service) GradeSubmission(ctx context.Context, id, correctorID string, gi GradeInput) (Submission, error) {
	grade := Grade{
		CorrectorID: correctorID,
		Competency1: gi.Competency1,
		Competency2: gi.Competency2,
		Competency3: gi.Competency3,
		Competency4: gi.Competency4,
		Competency5: gi.Competency5,
		Feedback:    gi.Feedback,
		GradedAt:    nowFunc().UTC(),
	}
	sub, err := svc.repo.SetGrade(ctx, id, grade)
	if err != nil {
		return Submission{}, err
	}

	if student, err := svc.usrSvc.GetByID(ctx, sub.StudentID); err == nil && student.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: student.Name, Address: student.Email}},
			Subject:      "Your essay has been corrected",
			TemplateName: "essay-graded",
			TemplateData: struct {
				Name     string
				Total    int
				Feedback string
			}{student.Name, grade.Total(), grade.Feedback},
		})
	}
	return sub, nil
}
