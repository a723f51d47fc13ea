package utils

import (
	"testing"
	"time"
)

func TestSafeEnv(t *testing.T) {
	t.Setenv("QM_TEST_KEY", "value")
	if got := SafeEnv("QM_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("SafeEnv = %q, want value", got)
	}
	if got := SafeEnv("QM_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv = %q, want fallback", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("QM_TEST_DUR", "15s")
	if got := EnvDuration("QM_TEST_DUR", time.Second); got != 15*time.Second {
		t.Fatalf("EnvDuration = %v, want 15s", got)
	}
	t.Setenv("QM_TEST_DUR", "garbage")
	if got := EnvDuration("QM_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("EnvDuration = %v, want fallback on parse error", got)
	}
	if got := EnvDuration("QM_TEST_DUR_MISSING", 2*time.Second); got != 2*time.Second {
		t.Fatalf("EnvDuration = %v, want fallback when unset", got)
	}
}
