package fileproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestForEachFile(t *testing.T) {
	files := []string{"c.ir.yaml", "a.ir.yaml", "b.ir.yaml"}

	results, errs := ForEachFile(context.Background(), files, 2, func(_ context.Context, path string) (string, error) {
		return strings.ToUpper(path), nil
	}, nil)

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"C.IR.YAML", "A.IR.YAML", "B.IR.YAML"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q (input order)", i, results[i], want[i])
		}
	}
}

func TestForEachFile_EmptyFileList(t *testing.T) {
	results, errs := ForEachFile(context.Background(), nil, 0, func(context.Context, string) (int, error) {
		return 1, nil
	}, nil)
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
	if errs != nil {
		t.Errorf("expected nil errors, got %v", errs)
	}
}

func TestForEachFile_WithErrors(t *testing.T) {
	files := []string{"z.ir.yaml", "ok.ir.yaml", "bad.ir.yaml"}
	errBad := errors.New("bad document")

	results, errs := ForEachFile(context.Background(), files, 0, func(_ context.Context, path string) (string, error) {
		if path != "ok.ir.yaml" {
			return "", errBad
		}
		return path, nil
	}, nil)

	if len(results) != 1 || results[0] != "ok.ir.yaml" {
		t.Errorf("results = %v", results)
	}
	if errs == nil {
		t.Fatal("expected errors")
	}
	if len(errs.Errors) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs.Errors))
	}
	if errs.Errors[0].Path != "bad.ir.yaml" || errs.Errors[1].Path != "z.ir.yaml" {
		t.Errorf("errors not sorted by path: %v", errs.Errors)
	}
	if !errors.Is(errs, errBad) {
		t.Error("errors.Is should see through ProcessingErrors")
	}
}

func TestForEachFile_ProgressCountsFailures(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var ticks atomic.Int32

	ForEachFile(context.Background(), files, 0, func(_ context.Context, path string) (int, error) {
		if path == "b" {
			return 0, errors.New("boom")
		}
		return 0, nil
	}, func() { ticks.Add(1) })

	if got := ticks.Load(); got != int32(len(files)) {
		t.Errorf("progress called %d times, want %d", got, len(files))
	}
}

func TestForEachFile_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := ForEachFile(ctx, []string{"a", "b"}, 1, func(context.Context, string) (int, error) {
		calls.Add(1)
		return 1, nil
	}, nil)

	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", calls.Load())
	}
	if len(results) != 0 {
		t.Errorf("results = %v", results)
	}
	if errs == nil || !errors.Is(errs, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", errs)
	}
}

func TestForEachFile_BoundsWorkers(t *testing.T) {
	files := make([]string, 32)
	for i := range files {
		files[i] = fmt.Sprintf("f%d", i)
	}
	var running, peak atomic.Int32

	ForEachFile(context.Background(), files, 3, func(context.Context, string) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return 0, nil
	}, nil)

	if peak.Load() > 3 {
		t.Errorf("peak concurrency %d exceeds 3", peak.Load())
	}
}

func TestWorkers(t *testing.T) {
	if Workers(5) != 5 {
		t.Errorf("Workers(5) = %d", Workers(5))
	}
	if Workers(0) <= 0 {
		t.Errorf("Workers(0) = %d, want a positive default", Workers(0))
	}
}

func TestProcessingError(t *testing.T) {
	err := ProcessingError{Path: "/docs/core.ir.yaml", Err: fmt.Errorf("parse failed")}
	expected := "/docs/core.ir.yaml: parse failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	if errs.HasErrors() {
		t.Error("empty ProcessingErrors should not have errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("empty error message = %q, want 'no errors'", errs.Error())
	}

	errs.Add("/a.ir.yaml", fmt.Errorf("error1"))
	if !errs.HasErrors() {
		t.Error("ProcessingErrors with one error should have errors")
	}
	if errs.Error() != "/a.ir.yaml: error1" {
		t.Errorf("single error message = %q", errs.Error())
	}

	errs.Add("/b.ir.yaml", fmt.Errorf("error2"))
	if errs.Error() != "2 files failed to process (first: /a.ir.yaml: error1)" {
		t.Errorf("multiple error message = %q", errs.Error())
	}
	if len(errs.Unwrap()) != 2 {
		t.Errorf("Unwrap() returned %d errors, want 2", len(errs.Unwrap()))
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("/f%d.ir.yaml", n), fmt.Errorf("error %d", n))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 100 {
		t.Errorf("expected 100 errors, got %d", len(errs.Errors))
	}
}
