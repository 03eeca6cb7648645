package model

// Process holds the attributes captured for one PID in a process snapshot.
// Nil pointers and empty strings mean the OS refused to reveal the value.
type Process struct {
	PID     uint32
	Name    string
	Cmd     []string
	ExePath string
	Status  string

	UID  *uint32
	GID  *uint32
	EUID *uint32
	EGID *uint32

	Environ []string
}

// ProcessTable maps a PID to its captured attributes.
type ProcessTable map[uint32]Process
