package notice

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/appredator/backend/core"
)

var (
	ErrNotFound = errors.New("notice not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateNotice(ctx context.Context, ntc Notice) (Notice, error)
		GetNoticeByID(ctx context.Context, id string) (Notice, error)
		// FilterNotices does a case-insensitive match on Notice.Title or Notice.Body.
		FilterNotices(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Notice, error)
		DeleteNoticesByID(ctx context.Context, ids ...string) error
	}

	// Broadcaster resolves the recipients of a broadcast notice.
	Broadcaster interface {
		ActiveStudentEmails(ctx context.Context) ([]mail.Address, error)
	}

	Service struct {
		repo    Repository
		usrSvc  Broadcaster
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, usrSvc Broadcaster, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, mailSvc: mailSvc}
}

// Create publishes a notice, emailing every active student when asked to.
// A broadcast failure does not undo the notice; it is already published.
func (svc *Service) Create(ctx context.Context, authorID string, nn NewNotice) (Notice, error) {
	now := nowFunc().UTC()
	ntc, err := svc.repo.CreateNotice(ctx, Notice{
		Title:     nn.Title,
		Body:      nn.Body,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Notice{}, err
	}

	if nn.Broadcast {
		addrs, err := svc.usrSvc.ActiveStudentEmails(ctx)
		if err != nil {
			return ntc, errors.Wrap(err, "resolving broadcast recipients")
		}
		if len(addrs) > 0 {
			svc.mailSvc.SendMessages(&core.EmailMessage{
				Bcc:          addrs,
				Subject:      ntc.Title,
				TemplateName: "notice",
				TemplateData: struct {
					Title string
					Body  string
				}{ntc.Title, ntc.Body},
			})
		}
	}
	return ntc, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notice, error) {
	return svc.repo.GetNoticeByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Notice, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterNotices(ctx, *filter, ordering...)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNoticesByID(ctx, ids...)
}
