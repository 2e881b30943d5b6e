package main

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"cardetl/internal/config"
)

// TestGetenvIntAndPickInt verifies env fallback and pick semantics.
func TestGetenvIntAndPickInt(t *testing.T) {
	_ = os.Unsetenv("CARDETL_TEST_INT")
	if v := getenvInt("CARDETL_TEST_INT", 7); v != 7 {
		t.Fatalf("getenvInt unset = %d, want 7", v)
	}
	t.Setenv("CARDETL_TEST_INT", "42")
	if v := getenvInt("CARDETL_TEST_INT", 7); v != 42 {
		t.Fatalf("getenvInt set = %d, want 42", v)
	}
	t.Setenv("CARDETL_TEST_INT", "many")
	if v := getenvInt("CARDETL_TEST_INT", 7); v != 7 {
		t.Fatalf("getenvInt invalid = %d, want 7", v)
	}
	if v := pickInt(5, 9); v != 5 {
		t.Fatalf("pickInt(5,9) = %d, want 5", v)
	}
	if v := pickInt(0, 9); v != 9 {
		t.Fatalf("pickInt(0,9) = %d, want 9", v)
	}
}

/*
TestErrAgg_ConcurrentAdds checks the aggregator keeps only the first few
messages but counts and buckets all of them when fed from many goroutines.
*/
func TestErrAgg_ConcurrentAdds(t *testing.T) {
	a := newErrAgg(thisMany)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				a.add(fmt.Sprintf("reason %d", i%4))
			}
		}()
	}
	wg.Wait()

	if a.count != 800 || len(a.first) != thisMany {
		t.Fatalf("count=%d first=%d", a.count, len(a.first))
	}
	top := a.top(2)
	if len(top) != 2 || top[0].count != 200 || top[0].msg != "reason 0" || top[1].msg != "reason 1" {
		t.Fatalf("top = %+v", top)
	}
}

func TestPrintIssues(t *testing.T) {
	warn := []config.Issue{{Severity: config.SeverityWarning, Path: "storage.csv.path", Message: "ignored"}}
	if printIssues(warn) {
		t.Fatal("warnings alone must not block the run")
	}
	errs := append(warn, config.Issue{Severity: config.SeverityError, Path: "job", Message: "empty"})
	if !printIssues(errs) {
		t.Fatal("an error issue must block the run")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"", "env", "cfg"}, "env"},
		{[]string{"flag", "env"}, "flag"},
		{[]string{"", ""}, ""},
		{nil, ""},
	}
	for _, c := range cases {
		if got := firstNonEmpty(c.in...); got != c.want {
			t.Errorf("firstNonEmpty(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
