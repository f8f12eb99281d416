package profile

import (
	"context"
	"errors"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrInvalidTimezone = errors.New("unknown timezone")
	ErrInvalidTheme    = errors.New("theme must be light, dark or system")
)

type Service interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error)
	// Timezone returns the stored IANA zone, or nil when unset or the
	// profile does not exist.
	Timezone(ctx context.Context, userID string) (*string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *service) Timezone(ctx context.Context, userID string) (*string, error) {
	p, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p.Timezone, nil
}

func (s *service) Update(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error) {
	existing, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		existing.Name = nullIfBlank(*in.Name)
	}

	if in.PhotoURL != nil {
		existing.PhotoURL = nullIfBlank(*in.PhotoURL)
	}

	// empty string clears the preference and the dashboard falls back to its default zone
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, ErrInvalidTimezone
			}
		}
		existing.Timezone = nullIfBlank(tz)
	}

	if in.Theme != nil {
		if !in.Theme.IsValid() {
			return nil, ErrInvalidTheme
		}
		existing.Theme = *in.Theme
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func nullIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
