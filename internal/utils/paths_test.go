package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanRemotePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/var/log/app.log", "/var/log/app.log"},
		{"/var//log/./app.log", "/var/log/app.log"},
		{"/var/log/../log/app.log", "/var/log/app.log"},
		{`\var\log\app.log`, "/var/log/app.log"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanRemotePath(tt.in), tt.in)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".ssh", "known_hosts"), ExpandHome("~/.ssh/known_hosts"))
	assert.Equal(t, "/etc/hosts", ExpandHome("/etc/hosts"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
