package envutil

import (
	"testing"
	"time"
)

func TestHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("SB_TEST_INT", "abc")
	t.Setenv("SB_TEST_FLOAT", "2.5")
	t.Setenv("SB_TEST_BOOL", "yes")
	t.Setenv("SB_TEST_DUR", "1500ms")

	if got := Int("SB_TEST_INT", 7); got != 7 {
		t.Fatalf("Int=%d", got)
	}
	if got := Float("SB_TEST_FLOAT", 0.1, 0, 1); got != 1 {
		t.Fatalf("Float=%v", got)
	}
	if !Bool("SB_TEST_BOOL", false) {
		t.Fatalf("Bool=false")
	}
	if got := Duration("SB_TEST_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Duration=%v", got)
	}
	if got := String("SB_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("String=%q", got)
	}
}
