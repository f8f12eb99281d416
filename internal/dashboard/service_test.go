package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/internal/subtask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu sync.Mutex

	subtasks []subtask.Subtask
	tasks    []TaskRecord
	timezone *string

	subtasksErr, tasksErr, timezoneErr error

	gotTaskIDs []string
	calls      int
}

func (f *fakeSource) FetchUserSubtasks(ctx context.Context, userID string) ([]subtask.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.subtasks, f.subtasksErr
}

func (f *fakeSource) FetchTasksWithTeamMembership(ctx context.Context, taskIDs []string) ([]TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotTaskIDs = taskIDs
	return f.tasks, f.tasksErr
}

func (f *fakeSource) FetchUserTimezone(ctx context.Context, userID string) (*string, error) {
	return f.timezone, f.timezoneErr
}

func newSource() *fakeSource {
	a := open("1", "a", "2024-01-16")
	b := open("2", "b", "2024-01-17")
	c := open("3", "c", "2024-01-17")
	c.TaskID = "task-2"
	return &fakeSource{
		subtasks: []subtask.Subtask{a, b, c},
		tasks: []TaskRecord{
			teamTask("task-1", "team-1", accepted(me)),
			teamTask("task-2", "team-2", accepted(me)),
		},
	}
}

func fixedClock() time.Time { return wednesday }

func TestService_Get(t *testing.T) {
	src := newSource()
	svc := NewService(src, Options{Now: fixedClock})

	res, err := svc.Get(context.Background(), me)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{"task-1", "task-2"}, src.gotTaskIDs)
	assert.Equal(t, "America/Sao_Paulo", res.Timezone)
	assert.Equal(t, 1, res.Cards.Overdue)
	assert.Equal(t, 2, res.Cards.Today)
	assert.Len(t, res.List, 3)
}

func TestService_GetWithoutUserIsNotReady(t *testing.T) {
	src := newSource()
	svc := NewService(src, Options{Now: fixedClock})

	res, err := svc.Get(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, src.calls)
}

func TestService_GetPropagatesFetchErrors(t *testing.T) {
	boom := errors.New("connection reset")

	cases := map[string]func(*fakeSource){
		"subtasks": func(s *fakeSource) { s.subtasksErr = boom },
		"tasks":    func(s *fakeSource) { s.tasksErr = boom },
		"timezone": func(s *fakeSource) { s.timezoneErr = boom },
	}
	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			src := newSource()
			breakIt(src)

			res, err := NewService(src, Options{Now: fixedClock}).Get(context.Background(), me)
			assert.ErrorIs(t, err, boom)
			assert.Nil(t, res)
		})
	}
}

func TestService_GetUsesStoredTimezone(t *testing.T) {
	src := newSource()
	src.timezone = strPtr("Asia/Tokyo")
	svc := NewService(src, Options{Now: func() time.Time { return time.Date(2024, 1, 18, 1, 30, 0, 0, time.UTC) }})

	res, err := svc.Get(context.Background(), me)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", res.Timezone)
	assert.Equal(t, "2024-01-18", res.Today)
}

func TestService_Watch(t *testing.T) {
	src := newSource()
	svc := NewService(src, Options{Now: fixedClock})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var results []*Result
	err := svc.Watch(ctx, me, time.Millisecond, func(res *Result, err error) {
		require.NoError(t, err)
		results = append(results, res)
		if len(results) == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 3)
}

func TestService_WatchDeliversErrors(t *testing.T) {
	src := newSource()
	src.subtasksErr = errors.New("down")
	svc := NewService(src, Options{Now: fixedClock})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gotErr error
	_ = svc.Watch(ctx, me, time.Millisecond, func(res *Result, err error) {
		gotErr = err
		assert.Nil(t, res)
		cancel()
	})

	assert.EqualError(t, gotErr, "down")
}

func TestService_WatchWithoutUser(t *testing.T) {
	src := newSource()
	svc := NewService(src, Options{Now: fixedClock})

	called := false
	err := svc.Watch(context.Background(), "", time.Millisecond, func(res *Result, err error) {
		called = true
	})

	assert.ErrorIs(t, err, ErrNoUser)
	assert.False(t, called)
	assert.Zero(t, src.calls)
}

func TestHandler_Get(t *testing.T) {
	h := NewHandler(NewService(newSource(), Options{Now: fixedClock}), time.Second)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), me))
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"cards":{"today":2,"overdue":1,"week":3,"completed":0}`)
	assert.Contains(t, body, `"chart_data":[`)
	assert.Contains(t, body, `"list_tasks":[`)
}

func TestHandler_GetUnauthorized(t *testing.T) {
	h := NewHandler(NewService(newSource(), Options{Now: fixedClock}), time.Second)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_GetFetchFailure(t *testing.T) {
	src := newSource()
	src.tasksErr = errors.New("down")
	h := NewHandler(NewService(src, Options{Now: fixedClock}), time.Second)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), me))
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// cancelAfterWrite cancels the request once the first event is written.
type cancelAfterWrite struct {
	*httptest.ResponseRecorder
	cancel context.CancelFunc
}

func (w *cancelAfterWrite) Write(p []byte) (int, error) {
	n, err := w.ResponseRecorder.Write(p)
	w.cancel()
	return n, err
}

func TestHandler_Stream(t *testing.T) {
	h := NewHandler(NewService(newSource(), Options{Now: fixedClock}), time.Hour)

	ctx, cancel := context.WithCancel(auth.ContextWithUserID(context.Background(), me))
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/stream", nil).WithContext(ctx)
	rec := &cancelAfterWrite{ResponseRecorder: httptest.NewRecorder(), cancel: cancel}

	h.Stream(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: dashboard\ndata: {"), body)
	assert.True(t, strings.HasSuffix(body, "}\n\n"), body)
}
