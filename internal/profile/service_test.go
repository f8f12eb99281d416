package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	profiles map[string]*Profile
}

func (f *fakeRepo) GetByUser(ctx context.Context, userID string) (*Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, p *Profile) error {
	if _, ok := f.profiles[p.UserID]; !ok {
		return ErrNotFound
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService() (Service, *fakeRepo) {
	repo := &fakeRepo{profiles: map[string]*Profile{
		"user-1": {UserID: "user-1", Theme: ThemeSystem},
	}}
	return NewService(repo), repo
}

func TestUpdate_Timezone(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Update(context.Background(), "user-1", UpdateProfileInput{Timezone: strPtr("Europe/Lisbon")})
	require.NoError(t, err)
	require.NotNil(t, p.Timezone)
	assert.Equal(t, "Europe/Lisbon", *p.Timezone)
	assert.Equal(t, "Europe/Lisbon", *repo.profiles["user-1"].Timezone)

	_, err = svc.Update(context.Background(), "user-1", UpdateProfileInput{Timezone: strPtr("Mars/Olympus")})
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	assert.Equal(t, "Europe/Lisbon", *repo.profiles["user-1"].Timezone, "failed update must not persist")

	p, err = svc.Update(context.Background(), "user-1", UpdateProfileInput{Timezone: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, p.Timezone)
}

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), "user-1", UpdateProfileInput{Name: strPtr("Ana")})
	require.NoError(t, err)

	dark := ThemeDark
	p, err := svc.Update(context.Background(), "user-1", UpdateProfileInput{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Ana", *p.Name)
}

func TestUpdate_InvalidTheme(t *testing.T) {
	svc, _ := newTestService()
	neon := Theme("neon")
	_, err := svc.Update(context.Background(), "user-1", UpdateProfileInput{Theme: &neon})
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestUpdate_MissingProfile(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Update(context.Background(), "ghost", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimezone(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	tz, err := svc.Timezone(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, tz)

	repo.profiles["user-1"].Timezone = strPtr("Europe/Lisbon")
	tz, err = svc.Timezone(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, tz)
	assert.Equal(t, "Europe/Lisbon", *tz)

	tz, err = svc.Timezone(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, tz)
}
