package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	base := Conflict("duplicate", "already exists")
	wrapped := fmt.Errorf("create thing: %w", base)

	if KindOf(wrapped) != KindConflict {
		t.Fatalf("expected conflict kind, got %s", KindOf(wrapped))
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("expected wrapped error to match sentinel")
	}
	appErr, ok := As(wrapped)
	if !ok || appErr.Code != "duplicate" {
		t.Fatalf("unexpected classified error: %+v", appErr)
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatal("expected internal kind for plain errors")
	}
	if _, ok := As(errors.New("boom")); ok {
		t.Fatal("did not expect classified error")
	}
}
