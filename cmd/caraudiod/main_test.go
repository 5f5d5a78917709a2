package main

import "testing"

func TestGetConfigPath(t *testing.T) {
	t.Run("default when unset", func(t *testing.T) {
		t.Setenv("CARAUDIO_CONFIG", "")
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("CARAUDIO_CONFIG", "/etc/caraudio/config.yaml")
		if got := getConfigPath(); got != "/etc/caraudio/config.yaml" {
			t.Errorf("getConfigPath() = %q", got)
		}
	})
}
