package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/siza083/produtive/internal/calendar"
)

const DefaultRefreshInterval = 30 * time.Second

var ErrNoUser = errors.New("no user to watch")

type Service interface {
	// Get returns nil without error when userID is empty: there is nothing
	// to show yet.
	Get(ctx context.Context, userID string) (*Result, error)
	// Watch calls fn with a fresh result immediately and then on every tick
	// until ctx is done. Fetch failures are passed to fn, not skipped. An
	// empty userID returns ErrNoUser without calling fn.
	Watch(ctx context.Context, userID string, interval time.Duration, fn func(*Result, error)) error
}

type Options struct {
	DefaultZone string
	Now         func() time.Time
}

type service struct {
	source      Source
	defaultZone string
	now         func() time.Time
}

func NewService(source Source, opts Options) Service {
	s := &service{
		source:      source,
		defaultZone: opts.DefaultZone,
		now:         opts.Now,
	}
	if s.defaultZone == "" {
		s.defaultZone = calendar.DefaultZone
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Get(ctx context.Context, userID string) (*Result, error) {
	if userID == "" {
		return nil, nil
	}

	tz, err := s.source.FetchUserTimezone(ctx, userID)
	if err != nil {
		return nil, err
	}

	subs, err := s.source.FetchUserSubtasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(subs))
	taskIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.TaskID]; ok {
			continue
		}
		seen[sub.TaskID] = struct{}{}
		taskIDs = append(taskIDs, sub.TaskID)
	}

	tasks, err := s.source.FetchTasksWithTeamMembership(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	return Aggregate(Input{
		UserID:      userID,
		Timezone:    tz,
		DefaultZone: s.defaultZone,
		Now:         s.now(),
		Subtasks:    subs,
		Tasks:       tasks,
	}), nil
}

func (s *service) Watch(ctx context.Context, userID string, interval time.Duration, fn func(*Result, error)) error {
	if userID == "" {
		return ErrNoUser
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.Get(ctx, userID)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			slog.WarnContext(ctx, "dashboard refresh failed", "user_id", userID, "error", err)
		}
		fn(res, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
