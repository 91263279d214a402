package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

// appendStep returns a transformer that derives its input and appends
// tag to the resource label, recording invocation order in calls.
func appendStep(tag string, calls *[]string) Transformer {
	return Func(func(_ context.Context, r resource.Resource) (resource.Resource, error) {
		*calls = append(*calls, tag)
		next := resource.Derive(r, "append "+tag)
		next.Label = r.Label + tag
		return next, nil
	})
}

func TestChainEmptyIsIdentity(t *testing.T) {
	t.Parallel()

	in := resource.New("https://example.com", "test", "label")
	out, err := Chain().Transform(context.Background(), in)
	if err != nil {
		t.Fatalf("identity returned error: %v", err)
	}
	if out.Label != in.Label || out.IsTransformed() {
		t.Fatalf("identity altered the resource: %+v", out)
	}
}

func TestChainRunsInInsertionOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	pipe := Chain(appendStep("a", &calls), appendStep("b", &calls), appendStep("c", &calls))

	out, err := pipe.Transform(context.Background(), resource.New("https://example.com", "test", ""))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.Label != "abc" {
		t.Fatalf("label = %q, want %q", out.Label, "abc")
	}
	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" || calls[2] != "c" {
		t.Fatalf("call order = %v", calls)
	}
}

func TestChainIsAssociative(t *testing.T) {
	t.Parallel()

	run := func(pipe Transformer) resource.Resource {
		out, err := pipe.Transform(context.Background(), resource.New("https://example.com", "test", ""))
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		return out
	}

	var left, right, flat []string
	leftOut := run(Chain(Chain(appendStep("a", &left), appendStep("b", &left)), appendStep("c", &left)))
	rightOut := run(Chain(appendStep("a", &right), Chain(appendStep("b", &right), appendStep("c", &right))))
	flatOut := run(Chain(appendStep("a", &flat), appendStep("b", &flat), appendStep("c", &flat)))

	if leftOut.Label != flatOut.Label || rightOut.Label != flatOut.Label {
		t.Fatalf("groupings disagree: %q %q %q", leftOut.Label, rightOut.Label, flatOut.Label)
	}
	if leftOut.PipePosition != flatOut.PipePosition || rightOut.PipePosition != flatOut.PipePosition {
		t.Fatalf("positions disagree: %d %d %d",
			leftOut.PipePosition, rightOut.PipePosition, flatOut.PipePosition)
	}
}

func TestChainAdvancesPipePosition(t *testing.T) {
	t.Parallel()

	var calls []string
	pipe := Chain(appendStep("a", &calls), appendStep("b", &calls), appendStep("c", &calls))

	out, err := pipe.Transform(context.Background(), resource.New("https://example.com", "test", ""))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.PipePosition != 2 {
		t.Fatalf("position after three changes = %d, want 2", out.PipePosition)
	}
}

func TestChainNoOpStepDoesNotAdvancePosition(t *testing.T) {
	t.Parallel()

	var calls []string
	pipe := Chain(appendStep("a", &calls), Identity, appendStep("b", &calls))

	out, err := pipe.Transform(context.Background(), resource.New("https://example.com", "test", ""))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.PipePosition != 1 {
		t.Fatalf("position with interleaved no-op = %d, want 1", out.PipePosition)
	}
}

func TestChainStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("step failed")
	var calls []string
	failing := Func(func(_ context.Context, r resource.Resource) (resource.Resource, error) {
		return r, boom
	})

	pipe := Chain(appendStep("a", &calls), failing, appendStep("b", &calls))
	out, err := pipe.Transform(context.Background(), resource.New("https://example.com", "test", ""))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(calls) != 1 {
		t.Fatalf("steps after failure still ran: %v", calls)
	}
	if out.Label != "a" {
		t.Fatalf("error should return last good state, got label %q", out.Label)
	}
}
