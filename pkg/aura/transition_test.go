package aura

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfgitn4j/auractl/internal/models"
)

// fakeInstance simulates the lifecycle behavior of the instance API: an
// action request moves the instance into a transitional status, and a
// fixed number of subsequent status polls later it reaches the end state.
type fakeInstance struct {
	mu sync.Mutex

	id     string
	name   string
	status string

	transitional string // status reported while the transition is pending
	endState     string // status reached after pollsToFinish polls
	pollsToFinish int

	failPolls bool // serve 500 on status polls after an action

	posts []string
	gets  int
}

func (f *fakeInstance) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		prefix := "/v1/instances/" + f.id

		switch {
		case r.Method == http.MethodGet && r.URL.Path == prefix:
			f.gets++
			if f.failPolls && len(f.posts) > 0 {
				http.Error(w, `{"errors":[{"message":"internal error"}]}`, http.StatusInternalServerError)
				return
			}
			f.writeInfo(w)
			if len(f.posts) > 0 && f.pollsToFinish > 0 {
				f.pollsToFinish--
				if f.pollsToFinish == 0 {
					f.status = f.endState
				}
			}

		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, prefix+"/"):
			action := strings.TrimPrefix(r.URL.Path, prefix+"/")
			f.posts = append(f.posts, action)
			f.status = f.transitional
			w.WriteHeader(http.StatusAccepted)
			f.writeInfo(w)

		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeInstance) writeInfo(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]models.InstanceInfo{
		"data": {ID: f.id, Name: f.name, Status: f.status},
	})
}

func (f *fakeInstance) postedActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

func fastWait() WaitOptions {
	return WaitOptions{Interval: 2 * time.Millisecond}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		current, target string
		want            string
		wantErr         bool
	}{
		{current: StatusPaused, target: StatusRunning, want: ActionResume},
		{current: StatusRunning, target: StatusPaused, want: ActionPause},
		{current: "loading", target: StatusRunning, wantErr: true},
		{current: "pausing", target: StatusPaused, wantErr: true},
		{current: StatusRunning, target: StatusRunning, wantErr: true},
	}

	for _, tt := range tests {
		got, err := actionFor(tt.current, tt.target)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tt.current, tt.target)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.current, tt.target)
	}
}

func TestRequestStateChangePause(t *testing.T) {
	fake := &fakeInstance{
		id:            "2b1f7ac8",
		name:          "fraud-demo",
		status:        StatusRunning,
		transitional:  "pausing",
		endState:      StatusPaused,
		pollsToFinish: 3,
	}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	var seen []string
	result, err := client.RequestStateChange(context.Background(), info, StatusPaused, WaitOptions{
		Interval: 2 * time.Millisecond,
		OnPoll:   func(status string) { seen = append(seen, status) },
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Greater(t, result.Elapsed, time.Duration(0))
	assert.Equal(t, []string{ActionPause}, fake.postedActions(), "exactly one pause must be posted")
	assert.Equal(t, StatusPaused, info.Status)

	// Polls observe the transitional status until the end state lands.
	require.NotEmpty(t, seen)
	assert.Equal(t, StatusPaused, seen[len(seen)-1])
	for _, status := range seen[:len(seen)-1] {
		assert.Equal(t, "pausing", status)
	}
}

func TestRequestStateChangeResume(t *testing.T) {
	fake := &fakeInstance{
		id:            "2b1f7ac8",
		status:        StatusPaused,
		transitional:  "resuming",
		endState:      StatusRunning,
		pollsToFinish: 2,
	}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	result, err := client.RequestStateChange(context.Background(), info, StatusRunning, fastWait())
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, []string{ActionResume}, fake.postedActions())
	assert.Equal(t, StatusRunning, info.Status)
}

func TestRequestStateChangeNoopAtTarget(t *testing.T) {
	fake := &fakeInstance{id: "2b1f7ac8", status: StatusPaused}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	result, err := client.RequestStateChange(context.Background(), info, StatusPaused, fastWait())
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, fake.postedActions(), "no action may be posted when already at target")
	assert.Equal(t, StatusPaused, info.Status)
}

func TestRequestStateChangeRejectsOtherPairs(t *testing.T) {
	fake := &fakeInstance{id: "2b1f7ac8", status: "loading"}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	_, err := client.RequestStateChange(context.Background(), info, StatusRunning, fastWait())

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, fake.postedActions())
}

func TestRequestStateChangeRejectsUnknownTarget(t *testing.T) {
	fake := &fakeInstance{id: "2b1f7ac8", status: StatusRunning}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	_, err := client.RequestStateChange(context.Background(), info, "destroyed", fastWait())

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, fake.postedActions())
	assert.Zero(t, fake.gets, "an invalid target must not hit the API at all")
}

func TestRequestStateChangeTimesOut(t *testing.T) {
	fake := &fakeInstance{
		id:            "2b1f7ac8",
		status:        StatusRunning,
		transitional:  "pausing",
		endState:      StatusPaused,
		pollsToFinish: 1 << 30, // never finishes
	}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	_, err := client.RequestStateChange(context.Background(), info, StatusPaused, WaitOptions{
		Interval: 2 * time.Millisecond,
		Timeout:  30 * time.Millisecond,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "pausing")
	assert.Equal(t, []string{ActionPause}, fake.postedActions())
}

func TestRequestStateChangePollErrorAborts(t *testing.T) {
	fake := &fakeInstance{
		id:            "2b1f7ac8",
		status:        StatusRunning,
		transitional:  "pausing",
		endState:      StatusPaused,
		pollsToFinish: 3,
		failPolls:     true,
	}
	client := newTestClient(t, fake.handler())

	info := &models.InstanceInfo{ID: fake.id}
	_, err := client.RequestStateChange(context.Background(), info, StatusPaused, fastWait())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
	assert.Equal(t, []string{ActionPause}, fake.postedActions())
}
