package notice

import (
	"time"

	"github.com/appredator/backend/core"
)

// Notice is an announcement shown on the student dashboard, optionally
// emailed to every active student on creation.
type Notice struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewNotice contains information needed to publish a notice.
type NewNotice struct {
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	Broadcast bool   `json:"broadcast"`
}

func (nn *NewNotice) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Body = core.CleanString(nn.Body)
	return core.Validate.Struct(nn)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
