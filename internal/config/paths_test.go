package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	assert.Equal(t, "/tmp/xdg-config/snapsched/config", DefaultConfigPath())
}

func TestSpoolFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	store := NewStore()
	store.SetProfileStrValue("name", "My Laptop", "2")

	assert.Equal(t,
		filepath.Join("/tmp/xdg-data", "snapsched", "spool", "2_My_Laptop"),
		store.SpoolFile("2"))
}
