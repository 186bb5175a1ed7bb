package logjson

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// TestHelper provides assertion utilities for logjson tests
type TestHelper struct {
	t *testing.T
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

func formatMsg(fallback string, msgAndArgs ...any) string {
	if len(msgAndArgs) == 0 {
		return fallback
	}
	format, ok := msgAndArgs[0].(string)
	if !ok {
		return fallback
	}
	return fmt.Sprintf(format, msgAndArgs[1:]...)
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(expected, actual any, msgAndArgs ...any) {
	h.t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		msg := formatMsg("Values are not equal", msgAndArgs...)
		h.t.Errorf("%s\nExpected: %v (%T)\nActual: %v (%T)", msg, expected, expected, actual, actual)
	}
}

// AssertNoError checks that error is nil
func (h *TestHelper) AssertNoError(err error, msgAndArgs ...any) {
	h.t.Helper()
	if err != nil {
		h.t.Errorf("%s, but got: %v", formatMsg("Expected no error", msgAndArgs...), err)
	}
}

// AssertError checks that error is not nil
func (h *TestHelper) AssertError(err error, msgAndArgs ...any) {
	h.t.Helper()
	if err == nil {
		h.t.Error(formatMsg("Expected an error", msgAndArgs...) + ", but got nil")
	}
}

// AssertErrorIs checks that err matches target with errors.Is
func (h *TestHelper) AssertErrorIs(err, target error, msgAndArgs ...any) {
	h.t.Helper()
	if !errors.Is(err, target) {
		h.t.Errorf("%s\nExpected: %v\nActual: %v", formatMsg("Error does not match target", msgAndArgs...), target, err)
	}
}

// AssertErrorContains checks that error contains specific text
func (h *TestHelper) AssertErrorContains(err error, contains string, msgAndArgs ...any) {
	h.t.Helper()
	if err == nil {
		h.t.Error(formatMsg("Expected an error", msgAndArgs...) + ", but got nil")
		return
	}
	if !strings.Contains(err.Error(), contains) {
		msg := formatMsg(fmt.Sprintf("Expected error to contain '%s'", contains), msgAndArgs...)
		h.t.Errorf("%s, but got: %v", msg, err)
	}
}

// AssertTrue checks that condition is true
func (h *TestHelper) AssertTrue(condition bool, msgAndArgs ...any) {
	h.t.Helper()
	if !condition {
		h.t.Error(formatMsg("Expected condition to be true", msgAndArgs...))
	}
}

// AssertFalse checks that condition is false
func (h *TestHelper) AssertFalse(condition bool, msgAndArgs ...any) {
	h.t.Helper()
	if condition {
		h.t.Error(formatMsg("Expected condition to be false", msgAndArgs...))
	}
}

// AssertNoPanic checks that function doesn't panic
func (h *TestHelper) AssertNoPanic(fn func(), msgAndArgs ...any) {
	h.t.Helper()
	defer func() {
		if r := recover(); r != nil {
			h.t.Errorf("%s, but it panicked with: %v", formatMsg("Expected function not to panic", msgAndArgs...), r)
		}
	}()
	fn()
}

// AssertJSON checks that obj encodes to the expected compact JSON text
func (h *TestHelper) AssertJSON(expected string, obj *Object, msgAndArgs ...any) {
	h.t.Helper()
	if obj == nil {
		h.t.Errorf("%s: object is nil, expected %s", formatMsg("JSON mismatch", msgAndArgs...), expected)
		return
	}
	if actual := obj.String(); actual != expected {
		h.t.Errorf("%s\nExpected: %s\nActual:   %s", formatMsg("JSON mismatch", msgAndArgs...), expected, actual)
	}
}

// MustParse parses s as an object and fails the test on error
func (h *TestHelper) MustParse(s string) *Object {
	h.t.Helper()
	obj, err := Parse(nil, []byte(s))
	if err != nil {
		h.t.Fatalf("parse %q: %v", s, err)
	}
	return obj
}

// ConcurrencyTester helps test concurrent operations
type ConcurrencyTester struct {
	t           *testing.T
	concurrency int
	iterations  int
}

// NewConcurrencyTester creates a new concurrency tester
func NewConcurrencyTester(t *testing.T, concurrency, iterations int) *ConcurrencyTester {
	return &ConcurrencyTester{
		t:           t,
		concurrency: concurrency,
		iterations:  iterations,
	}
}

// Run runs concurrent test operations
func (ct *ConcurrencyTester) Run(operation func(workerID, iteration int) error) {
	ct.t.Helper()

	done := make(chan error, ct.concurrency)

	for i := 0; i < ct.concurrency; i++ {
		go func(workerID int) {
			for j := 0; j < ct.iterations; j++ {
				if err := operation(workerID, j); err != nil {
					done <- fmt.Errorf("worker %d, iteration %d: %w", workerID, j, err)
					return
				}
			}
			done <- nil
		}(i)
	}

	for i := 0; i < ct.concurrency; i++ {
		if err := <-done; err != nil {
			ct.t.Errorf("Concurrent operation failed: %v", err)
		}
	}
}

// BenchmarkHelper provides utilities for benchmark tests
type BenchmarkHelper struct {
	b *testing.B
}

// NewBenchmarkHelper creates a new benchmark helper
func NewBenchmarkHelper(b *testing.B) *BenchmarkHelper {
	return &BenchmarkHelper{b: b}
}

// MeasureMemory measures memory allocations during benchmark
func (bh *BenchmarkHelper) MeasureMemory(fn func()) {
	bh.b.Helper()
	bh.b.ReportAllocs()

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	fn()

	runtime.GC()
	runtime.ReadMemStats(&after)

	bh.b.ReportMetric(float64(after.Mallocs-before.Mallocs), "mallocs/run")
}
