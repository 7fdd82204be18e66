package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobCommandTokens_Minimal(t *testing.T) {
	cmd := JobCommand{Executable: "/usr/bin/snapsched", ProfileID: "1"}

	assert.Equal(t, []string{"/usr/bin/snapsched", "backup-job"}, cmd.Tokens())
}

func TestJobCommandTokens_SecondProfileGetsFlag(t *testing.T) {
	cmd := JobCommand{Executable: "/usr/bin/snapsched", ProfileID: "2"}

	assert.Equal(t, []string{"/usr/bin/snapsched", "--profile-id", "2", "backup-job"}, cmd.Tokens())
}

func TestJobCommandTokens_ConfigFlagOnlyWhenNonDefault(t *testing.T) {
	cmd := JobCommand{
		Executable:        "/usr/bin/snapsched",
		ProfileID:         "1",
		ConfigPath:        "/home/user/.config/snapsched/config",
		DefaultConfigPath: "/home/user/.config/snapsched/config",
	}
	assert.NotContains(t, cmd.Tokens(), "--config")

	cmd.ConfigPath = "/tmp/alt-config"
	assert.Equal(t, []string{
		"/usr/bin/snapsched", "--config", "/tmp/alt-config", "backup-job",
	}, cmd.Tokens())
}

func TestJobCommandTokens_WrapperOrder(t *testing.T) {
	cmd := JobCommand{
		Executable: "/usr/bin/snapsched",
		ProfileID:  "1",
		NicePath:   "/usr/bin/nice",
		IonicePath: "/usr/bin/ionice",
		Debug:      true,
	}

	assert.Equal(t, []string{
		"/usr/bin/nice", "-n19",
		"/usr/bin/ionice", "-c2", "-n7",
		"/usr/bin/snapsched", "--debug", "backup-job",
	}, cmd.Tokens())
}

func TestJobCommandShellString_Redirection(t *testing.T) {
	cmd := JobCommand{Executable: "/usr/bin/snapsched", ProfileID: "1"}

	assert.Equal(t, "/usr/bin/snapsched backup-job", cmd.ShellString())

	cmd.RedirectStdout = true
	assert.Equal(t, "/usr/bin/snapsched backup-job >/dev/null", cmd.ShellString())

	cmd.RedirectStderr = true
	assert.Equal(t, "/usr/bin/snapsched backup-job >/dev/null 2>&1", cmd.ShellString())

	cmd.RedirectStdout = false
	assert.Equal(t, "/usr/bin/snapsched backup-job 2>/dev/null", cmd.ShellString())
}
