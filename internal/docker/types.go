package docker

// Container represents a Docker container with relevant metadata
type Container struct {
	ID     string
	Name   string
	State  string // running, exited, etc.
	Status string // human-readable, e.g. "Up 2 hours"
	Image  string
}

// Service represents a swarm service with its task counts
type Service struct {
	ID           string
	Name         string
	Image        string
	HasStatus    bool // task counts are only reported by API >= 1.41
	RunningTasks uint64
	DesiredTasks uint64
}

// FilterOptions contains options for filtering containers
type FilterOptions struct {
	IncludeAll bool // Include stopped containers
}
