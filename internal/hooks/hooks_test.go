package hooks_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/euforicio/stanza/internal/content"
	"github.com/euforicio/stanza/internal/hooks"
)

type stubHook struct {
	name  string
	kinds []content.Kind
	fail  bool
	log   *[]string
}

func (h *stubHook) Name() string              { return h.name }
func (h *stubHook) Kinds() []content.Kind     { return h.kinds }
func (h *stubHook) Apply(*content.Document) error {
	*h.log = append(*h.log, h.name)
	if h.fail {
		return errors.New("boom")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistryRunsInPriorityOrder(t *testing.T) {
	t.Parallel()

	var ran []string
	reg := hooks.NewRegistry(discardLogger())
	reg.Register(200, &stubHook{name: "late", log: &ran})
	reg.Register(100, &stubHook{name: "bbb", log: &ran})
	reg.Register(100, &stubHook{name: "aaa", log: &ran})

	reg.Run(&content.Document{Kind: content.KindPost, OutputPath: "x.html"})

	want := []string{"aaa", "bbb", "late"}
	if len(ran) != len(want) {
		t.Fatalf("expected %d hooks to run, got %v", len(want), ran)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("execution order %v, want %v", ran, want)
		}
	}
}

func TestRegistryFiltersByKind(t *testing.T) {
	t.Parallel()

	var ran []string
	reg := hooks.NewRegistry(discardLogger())
	reg.Register(1, &stubHook{name: "posts-only", kinds: []content.Kind{content.KindPost}, log: &ran})
	reg.Register(2, &stubHook{name: "everything", log: &ran})

	reg.Run(&content.Document{Kind: content.KindPage, OutputPath: "about.html"})

	if len(ran) != 1 || ran[0] != "everything" {
		t.Fatalf("expected only the unrestricted hook to run, got %v", ran)
	}
}

func TestRegistrySwallowsHookErrors(t *testing.T) {
	t.Parallel()

	var ran []string
	reg := hooks.NewRegistry(discardLogger())
	reg.Register(1, &stubHook{name: "broken", fail: true, log: &ran})
	reg.Register(2, &stubHook{name: "after", log: &ran})

	// Must not panic and must keep running later hooks.
	reg.Run(&content.Document{Kind: content.KindPost, OutputPath: "x.html"})

	if len(ran) != 2 || ran[1] != "after" {
		t.Fatalf("hooks after a failure did not run: %v", ran)
	}
}

func TestRegistryNames(t *testing.T) {
	t.Parallel()

	var ran []string
	reg := hooks.NewRegistry(discardLogger())
	reg.Register(2, &stubHook{name: "b", log: &ran})
	reg.Register(1, &stubHook{name: "a", log: &ran})

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
}
