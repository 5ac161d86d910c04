package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "create-superadmin"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err=%v)", name, err)
		}
	}
}

func TestCreateSuperadmin_RequiresEmailAndPassword(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SUPERADMIN_PASSWORD", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"create-superadmin", "--full-name", "Direction"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--email") {
		t.Fatalf("expected missing flag error, got %v", err)
	}
}
