package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	tests := []struct {
		name string
		env  string
		dir  func() (string, error)
		home string
	}{
		{"cache", "XDG_CACHE_HOME", cacheDir, ".cache"},
		{"config", "XDG_CONFIG_HOME", configDir, ".config"},
	}
	for _, tt := range tests {
		t.Run(tt.name+" from env", func(t *testing.T) {
			base := t.TempDir()
			t.Setenv(tt.env, base)
			got, err := tt.dir()
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(base, appName); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})

		t.Run(tt.name+" default", func(t *testing.T) {
			t.Setenv(tt.env, "")
			home, err := os.UserHomeDir()
			if err != nil {
				t.Skip("no home directory")
			}
			got, err := tt.dir()
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(home, tt.home, appName); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestDefaultDataDirs(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"cache", "path"})
	root.SetOut(io.Discard)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	if want := filepath.Join(base, appName, "maps"); c.Config.Store.Dir != want {
		t.Errorf("store dir = %q, want %q", c.Config.Store.Dir, want)
	}
	if want := filepath.Join(base, appName, "sessions"); c.Config.Sessions.Dir != want {
		t.Errorf("session dir = %q, want %q", c.Config.Sessions.Dir, want)
	}
}
