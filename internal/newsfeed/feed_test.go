package newsfeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"market-intel/internal/types"
)

func TestFetchWithoutSources(t *testing.T) {
	f := NewFeedWithSources(time.Second, nil)
	_, err := f.Fetch(context.Background(), "nifty", 9)
	if !errors.Is(err, types.ErrDataUnavailable) {
		t.Fatalf("expected data-unavailable error, got %v", err)
	}
}

func TestDefaultSourcesComplete(t *testing.T) {
	f := NewFeed(time.Second)
	if len(f.sources) == 0 {
		t.Fatal("expected default sources")
	}
	for _, s := range f.sources {
		if s.Name == "" || s.BaseURL == "" || s.Selectors.Item == "" {
			t.Errorf("incomplete source definition: %+v", s)
		}
	}
}
