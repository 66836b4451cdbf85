package server

import (
	"net/http"
	"net/url"

	"github.com/zorak1103/conman/internal/docker"
	"github.com/zorak1103/conman/internal/workload"
)

func containerWorkload(ctr docker.Container) workload.Workload {
	state := workload.ParseState(ctr.State)
	self := ContainersRoute + "/" + url.PathEscape(ctr.ID)

	links := workload.Links{
		DownloadLog: &workload.Link{
			Href:   self + "/log/download",
			Rel:    workload.ActionDownloadLog,
			Method: http.MethodGet,
		},
	}
	if removable(state) {
		links.Remove = removeLink(self)
	}

	return workload.Workload{
		ID:     ctr.ID,
		Name:   ctr.Name,
		Image:  ctr.Image,
		State:  state,
		Status: ctr.Status,
		Links:  links,
	}
}

// serviceWorkload maps a swarm service. Services carry no status text; task counts
// only feed the derived state.
func serviceWorkload(svc docker.Service) workload.Workload {
	return workload.Workload{
		ID:    svc.ID,
		Name:  svc.Name,
		Image: svc.Image,
		State: serviceState(svc),
		Links: workload.Links{
			Remove: removeLink(ServicesRoute + "/" + url.PathEscape(svc.ID)),
		},
	}
}

// serviceState derives a lifecycle state from task counts.
func serviceState(svc docker.Service) workload.State {
	switch {
	case !svc.HasStatus:
		return workload.StateUnknown
	case svc.RunningTasks > 0:
		return workload.StateRunning
	case svc.DesiredTasks > 0:
		return workload.StateCreated
	default:
		return workload.StateExited
	}
}

// removable reports whether the engine accepts a non-forced remove in this state.
func removable(state workload.State) bool {
	switch state {
	case workload.StateCreated, workload.StateExited, workload.StateDead:
		return true
	default:
		return false
	}
}

func removeLink(href string) *workload.Link {
	return &workload.Link{Href: href, Rel: workload.ActionRemove, Method: http.MethodDelete}
}
