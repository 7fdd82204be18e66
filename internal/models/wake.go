package models

// WakeConfig wakes the backup destination host via Wake-on-LAN before a
// scheduled run. Optional per profile.
type WakeConfig struct {
	Enabled     bool
	MACAddress  string
	BroadcastIP string
}

// RemoteConfig holds the SSH settings used to run the retention prune on
// the remote destination in the background.
type RemoteConfig struct {
	Host    string
	Port    int
	User    string
	KeyPath string

	// MaxArgLength limits the length of commands run on the remote host.
	// 0 means unlimited; values below 700 are rejected at the point of use
	// because such a limit cannot fit any useful command.
	MaxArgLength int

	// PruneInBackground runs the tiered-retention prune on the remote
	// host after a successful backup.
	PruneInBackground bool
}
