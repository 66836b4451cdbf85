package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/conman/internal/settings"
	"github.com/zorak1103/conman/internal/workload"
)

func workloadAPI(t *testing.T) *httptest.Server {
	t.Helper()

	containers := []workload.Workload{
		{ID: "0123456789abcdef", Name: "web", Image: "nginx:1.27", State: workload.StateRunning, Status: "Up 2 hours",
			Links: workload.Links{DownloadLog: &workload.Link{Href: "/api/containers/0123456789abcdef/log/download", Method: http.MethodGet}}},
		{ID: "fedcba9876543210", Name: "migrate", Image: "app:2", State: workload.StateExited,
			Links: workload.Links{Remove: &workload.Link{Href: "/api/containers/fedcba9876543210", Method: http.MethodDelete}}},
	}
	services := []workload.Workload{
		{ID: "svc1", Name: "stack_api", Image: "api:3", State: workload.StateRunning},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/containers", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(containers)
	})
	mux.HandleFunc("GET /api/services", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(services)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runLs executes ls with the given flags and returns its output.
func runLs(t *testing.T, filter string, swarm bool) (string, error) {
	t.Helper()

	originalFilter, originalSwarm := lsFilter, lsSwarm
	lsFilter, lsSwarm = filter, swarm
	t.Cleanup(func() { lsFilter, lsSwarm = originalFilter, originalSwarm })

	var buf bytes.Buffer
	lsCmd.SetOut(&buf)
	lsCmd.SetContext(context.Background())
	t.Cleanup(func() { lsCmd.SetOut(nil) })

	err := lsCmd.RunE(lsCmd, nil)
	return buf.String(), err
}

func TestLsCmd_ListsContainers(t *testing.T) {
	withConfig(t, testConfig(t, workloadAPI(t).URL))

	output, err := runLs(t, "", false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ACTIONS")
	assert.Contains(t, lines[1], "0123456789ab")
	assert.Contains(t, lines[1], "Up 2 hours")
	assert.Contains(t, lines[1], "downloadLog")
	assert.Contains(t, lines[2], "migrate")
	assert.Contains(t, lines[2], "remove")
}

func TestLsCmd_Filter(t *testing.T) {
	withConfig(t, testConfig(t, workloadAPI(t).URL))

	output, err := runLs(t, "exited", false)
	require.NoError(t, err)
	assert.Contains(t, output, "migrate")
	assert.NotContains(t, output, "nginx")
}

func TestLsCmd_SwarmFlagDoesNotPersist(t *testing.T) {
	c := testConfig(t, workloadAPI(t).URL)
	withConfig(t, c)

	output, err := runLs(t, "", true)
	require.NoError(t, err)
	assert.Contains(t, output, "stack_api")
	assert.NotContains(t, output, "migrate")

	store, err := settings.OpenFile(c.Settings.File)
	require.NoError(t, err)
	stored, err := settings.Load(store)
	require.NoError(t, err)
	assert.False(t, stored.SwarmMode)
}

func TestLsCmd_StoredSwarmMode(t *testing.T) {
	c := testConfig(t, workloadAPI(t).URL)
	withConfig(t, c)

	store, err := settings.OpenFile(c.Settings.File)
	require.NoError(t, err)
	require.NoError(t, store.Set(settings.KeySwarmMode, true))

	output, err := runLs(t, "", false)
	require.NoError(t, err)
	assert.Contains(t, output, "stack_api")
}

func TestLsCmd_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	withConfig(t, testConfig(t, url))

	_, err := runLs(t, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list workloads")
}

func TestWriteWorkloadTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeWorkloadTable(&buf, nil)
	assert.Equal(t, "No workloads found\n", buf.String())
}

func TestAvailableActions(t *testing.T) {
	both := workload.Workload{Links: workload.Links{
		Remove:      &workload.Link{Href: "/x", Method: http.MethodDelete},
		DownloadLog: &workload.Link{Href: "/x/log", Method: http.MethodGet},
	}}
	assert.Equal(t, "remove,downloadLog", availableActions(both))

	incomplete := workload.Workload{Links: workload.Links{Remove: &workload.Link{Href: "/x"}}}
	assert.Empty(t, availableActions(incomplete))
	assert.Equal(t, "-", dash(availableActions(incomplete)))
}
