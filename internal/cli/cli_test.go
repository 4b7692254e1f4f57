package cli

import (
	"testing"
)

func TestRootCommandHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Errorf("help failed: %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"crawl", "serve"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %s not registered", name)
		}
	}
}

func TestCrawlFlagDefaults(t *testing.T) {
	defaults := map[string]string{
		"depth":     "1",
		"max-pages": "50",
		"format":    "markdown",
		"output":    "./output",
		"delay":     "1",
		"timeout":   "30",
	}

	for name, want := range defaults {
		f := crawlCmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("missing flag %s", name)
			continue
		}
		if f.DefValue != want {
			t.Errorf("flag %s default = %q, want %q", name, f.DefValue, want)
		}
	}
}

func TestCrawlRequiresURL(t *testing.T) {
	crawlCmd.SetArgs(nil)
	if err := crawlCmd.Args(crawlCmd, nil); err == nil {
		t.Error("expected error for missing URL argument")
	}
}
