package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/conman/internal/docker"
	"github.com/zorak1103/conman/internal/notification"
	"github.com/zorak1103/conman/internal/workload"
)

// mockDocker implements docker.Client for testing
type mockDocker struct {
	mu         sync.Mutex
	containers []docker.Container
	services   []docker.Service
	logs       string
	listErr    error
	removeErr  error
	logErr     error
	logDelay   time.Duration
	removed    []string
}

func (m *mockDocker) Ping(_ context.Context) error { return nil }
func (m *mockDocker) Close() error                 { return nil }

func (m *mockDocker) ListContainers(_ context.Context, _ docker.FilterOptions) ([]docker.Container, error) {
	return m.containers, m.listErr
}

func (m *mockDocker) ListServices(_ context.Context) ([]docker.Service, error) {
	return m.services, m.listErr
}

func (m *mockDocker) RemoveContainer(_ context.Context, id string) error {
	return m.record("container:"+id, m.removeErr)
}

func (m *mockDocker) RemoveService(_ context.Context, id string) error {
	return m.record("service:"+id, m.removeErr)
}

func (m *mockDocker) record(entry string, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return err
	}
	m.removed = append(m.removed, entry)
	return nil
}

func (m *mockDocker) WriteContainerLog(ctx context.Context, _ string, w io.Writer) error {
	if m.logDelay > 0 {
		select {
		case <-time.After(m.logDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.logErr != nil {
		return m.logErr
	}
	_, err := io.WriteString(w, m.logs)
	return err
}

type recordingNotifier struct {
	events []notification.ActionEvent
	err    error
}

func (r *recordingNotifier) SendAction(event notification.ActionEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func newTestServer(t *testing.T, d *mockDocker, n ActionNotifier) *Server {
	t.Helper()
	srv, err := New(Options{Listen: ":0", Docker: d, Notifier: n, Logger: zerolog.Nop(), LogTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, target string) *http.Response {
	t.Helper()
	resp, err := srv.App().Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeWorkloads(t *testing.T, resp *http.Response) []workload.Workload {
	t.Helper()
	var out []workload.Workload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNew_RequiresDocker(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestListContainers(t *testing.T) {
	d := &mockDocker{containers: []docker.Container{
		{ID: "a1", Name: "web", Image: "nginx", State: "running", Status: "Up 2 hours"},
		{ID: "b2", Name: "job", Image: "busybox", State: "exited", Status: "Exited (0)"},
		{ID: "c3", Name: "odd", Image: "alpine", State: "restarting"},
	}}
	srv := newTestServer(t, d, nil)

	resp := do(t, srv, http.MethodGet, ContainersRoute)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeWorkloads(t, resp)
	require.Len(t, got, 3)

	web := got[0]
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, workload.StateRunning, web.State)
	assert.Equal(t, "Up 2 hours", web.Status)
	assert.Nil(t, web.Links.Remove, "running containers are not removable")
	require.NotNil(t, web.Links.DownloadLog)
	assert.Equal(t, "/api/containers/a1/log/download", web.Links.DownloadLog.Href)
	assert.Equal(t, http.MethodGet, web.Links.DownloadLog.Method)

	job := got[1]
	require.NotNil(t, job.Links.Remove)
	assert.Equal(t, "/api/containers/b2", job.Links.Remove.Href)
	assert.Equal(t, http.MethodDelete, job.Links.Remove.Method)

	assert.Equal(t, workload.StateUnknown, got[2].State)
}

func TestListContainers_Empty(t *testing.T) {
	srv := newTestServer(t, &mockDocker{}, nil)

	resp := do(t, srv, http.MethodGet, ContainersRoute)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestListContainers_DockerError(t *testing.T) {
	srv := newTestServer(t, &mockDocker{listErr: errors.New("daemon down")}, nil)

	resp := do(t, srv, http.MethodGet, ContainersRoute)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "daemon down")
}

func TestListServices(t *testing.T) {
	d := &mockDocker{services: []docker.Service{
		{ID: "s1", Name: "web", Image: "nginx", HasStatus: true, RunningTasks: 2, DesiredTasks: 2},
		{ID: "s2", Name: "pending", HasStatus: true, DesiredTasks: 1},
		{ID: "s3", Name: "scaled", HasStatus: true},
		{ID: "s4", Name: "legacy"},
	}}
	srv := newTestServer(t, d, nil)

	resp := do(t, srv, http.MethodGet, ServicesRoute)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var fields []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, record := range fields {
		assert.NotContains(t, record, "status", "service records carry no status")
	}

	var got []workload.Workload
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 4)

	want := []workload.State{workload.StateRunning, workload.StateCreated, workload.StateExited, workload.StateUnknown}
	for i, w := range got {
		assert.Equal(t, want[i], w.State, "service %s", w.ID)
		require.NotNil(t, w.Links.Remove)
		assert.Equal(t, "/api/services/"+w.ID, w.Links.Remove.Href)
		assert.Nil(t, w.Links.DownloadLog)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		removeErr  error
		wantStatus int
		wantEntry  string
	}{
		{name: "container", target: "/api/containers/b2", wantStatus: http.StatusNoContent, wantEntry: "container:b2"},
		{name: "service", target: "/api/services/s1", wantStatus: http.StatusNoContent, wantEntry: "service:s1"},
		{
			name:       "not found",
			target:     "/api/containers/zz",
			removeErr:  fmt.Errorf("%w: zz", docker.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "engine failure",
			target:     "/api/services/s1",
			removeErr:  errors.New("conflict"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDocker{removeErr: tt.removeErr}
			n := &recordingNotifier{}
			srv := newTestServer(t, d, n)

			resp := do(t, srv, http.MethodDelete, tt.target)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantEntry != "" {
				assert.Equal(t, []string{tt.wantEntry}, d.removed)
			} else {
				assert.Empty(t, d.removed)
			}

			require.Len(t, n.events, 1)
			assert.Equal(t, workload.ActionRemove, n.events[0].Action)
			assert.Equal(t, tt.removeErr, n.events[0].Err)
		})
	}
}

func TestRemove_NotifierFailureDoesNotFailRequest(t *testing.T) {
	n := &recordingNotifier{err: errors.New("webhook down")}
	srv := newTestServer(t, &mockDocker{}, n)

	resp := do(t, srv, http.MethodDelete, "/api/containers/b2")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, n.events, 1)
}

func TestDownloadContainerLog(t *testing.T) {
	srv := newTestServer(t, &mockDocker{logs: "line 1\nline 2\n"}, nil)

	resp := do(t, srv, http.MethodGet, "/api/containers/a1/log/download")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, `attachment; filename="a1.log"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(body))
}

func TestDownloadContainerLog_Errors(t *testing.T) {
	tests := []struct {
		name       string
		docker     *mockDocker
		wantStatus int
	}{
		{
			name:       "not found",
			docker:     &mockDocker{logErr: docker.ErrNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "timeout",
			docker:     &mockDocker{logDelay: 5 * time.Second},
			wantStatus: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.docker, nil)
			resp := do(t, srv, http.MethodGet, "/api/containers/a1/log/download")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &mockDocker{}, nil)

	resp := do(t, srv, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestServiceState(t *testing.T) {
	tests := []struct {
		name string
		svc  docker.Service
		want workload.State
	}{
		{"no status", docker.Service{}, workload.StateUnknown},
		{"running", docker.Service{HasStatus: true, RunningTasks: 1, DesiredTasks: 3}, workload.StateRunning},
		{"starting", docker.Service{HasStatus: true, DesiredTasks: 3}, workload.StateCreated},
		{"scaled to zero", docker.Service{HasStatus: true}, workload.StateExited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serviceState(tt.svc))
		})
	}
}

func TestRemovable(t *testing.T) {
	for _, s := range []workload.State{workload.StateCreated, workload.StateExited, workload.StateDead} {
		assert.True(t, removable(s), s.String())
	}
	for _, s := range []workload.State{workload.StateRunning, workload.StatePaused, workload.StateUnknown} {
		assert.False(t, removable(s), s.String())
	}
}
