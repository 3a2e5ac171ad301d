package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/masjid-console/internal/domain"
)

// ContentUseCase serves posts ("informasi") and activities ("kegiatan").
type ContentUseCase struct {
	posts      PostBackend
	activities ActivityBackend
	loc        *time.Location
	now        func() time.Time
}

// NewContentUseCase creates a new ContentUseCase. loc is the mosque's time
// zone used to derive activity status.
func NewContentUseCase(posts PostBackend, activities ActivityBackend, loc *time.Location) *ContentUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ContentUseCase{
		posts:      posts,
		activities: activities,
		loc:        loc,
		now:        time.Now,
	}
}

// ListPosts returns posts newest first, filtered by query.
func (uc *ContentUseCase) ListPosts(ctx context.Context, token, query string, limit, offset int) ([]*domain.Post, int, error) {
	all, err := uc.posts.ListPosts(ctx, token)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*domain.Post, 0, len(all))
	for _, p := range all {
		if domain.MatchesQuery(query, p.Title, p.Content) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	return domain.Paginate(matched, limit, offset), len(matched), nil
}

// GetPost returns a single post.
func (uc *ContentUseCase) GetPost(ctx context.Context, token, id string) (*domain.Post, error) {
	return uc.posts.GetPost(ctx, token, id)
}

// CreatePost validates and creates a post.
func (uc *ContentUseCase) CreatePost(ctx context.Context, token string, in *domain.PostInput) (*domain.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.posts.CreatePost(ctx, token, in)
}

// UpdatePost validates and updates a post.
func (uc *ContentUseCase) UpdatePost(ctx context.Context, token, id string, in *domain.PostInput) (*domain.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.posts.UpdatePost(ctx, token, id, in)
}

// DeletePost removes a post.
func (uc *ContentUseCase) DeletePost(ctx context.Context, token, id string) error {
	return uc.posts.DeletePost(ctx, token, id)
}

// ActivityView is an activity with its status at the time of the request.
type ActivityView struct {
	*domain.Activity
	Status domain.ActivityStatus
}

// ActivityQuery filters the activity list.
type ActivityQuery struct {
	Query  string
	Status domain.ActivityStatus
	Limit  int
	Offset int
}

// ListActivities returns activities ordered by start date with derived status.
// Upcoming and ongoing activities come first, soonest first.
func (uc *ContentUseCase) ListActivities(ctx context.Context, token string, q ActivityQuery) ([]ActivityView, int, error) {
	all, err := uc.activities.ListActivities(ctx, token)
	if err != nil {
		return nil, 0, err
	}

	now := uc.now()
	views := make([]ActivityView, 0, len(all))
	for _, a := range all {
		status := a.StatusAt(now, uc.loc)
		if q.Status != "" && status != q.Status {
			continue
		}
		if !domain.MatchesQuery(q.Query, a.Title, a.Description, a.Location) {
			continue
		}
		views = append(views, ActivityView{Activity: a, Status: status})
	}

	sort.SliceStable(views, func(i, j int) bool {
		fi, fj := views[i].Status == domain.ActivityFinished, views[j].Status == domain.ActivityFinished
		if fi != fj {
			return !fi
		}
		if fi {
			return views[i].StartsAt.After(views[j].StartsAt)
		}
		return views[i].StartsAt.Before(views[j].StartsAt)
	})

	return domain.Paginate(views, q.Limit, q.Offset), len(views), nil
}

// GetActivity returns a single activity with its status.
func (uc *ContentUseCase) GetActivity(ctx context.Context, token, id string) (ActivityView, error) {
	a, err := uc.activities.GetActivity(ctx, token, id)
	if err != nil {
		return ActivityView{}, err
	}
	return ActivityView{Activity: a, Status: a.StatusAt(uc.now(), uc.loc)}, nil
}

// CreateActivity validates and creates an activity.
func (uc *ContentUseCase) CreateActivity(ctx context.Context, token string, in *domain.ActivityInput) (*domain.Activity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.activities.CreateActivity(ctx, token, in)
}

// UpdateActivity validates and updates an activity.
func (uc *ContentUseCase) UpdateActivity(ctx context.Context, token, id string, in *domain.ActivityInput) (*domain.Activity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return uc.activities.UpdateActivity(ctx, token, id, in)
}

// DeleteActivity removes an activity.
func (uc *ContentUseCase) DeleteActivity(ctx context.Context, token, id string) error {
	return uc.activities.DeleteActivity(ctx, token, id)
}
