package browser

import (
	"context"
	"testing"

	"rental-aggregator/utils"
)

func TestDisplayBin(t *testing.T) {
	if got := displayBin(""); got != "(chromedp default lookup)" {
		t.Errorf("displayBin(\"\") = %q", got)
	}
	if got := displayBin("/usr/bin/chromium"); got != "/usr/bin/chromium" {
		t.Errorf("displayBin = %q", got)
	}
}

func TestRenderAfterCloseFails(t *testing.T) {
	b := &Browser{
		logger:      utils.Discard(),
		retry:       &utils.RetryConfig{MaxAttempts: 1},
		cancelAlloc: func() {},
		cancelCtx:   func() {},
	}
	b.Close()
	b.Close()

	if _, err := b.Render(context.Background(), "https://example.com", 0); err == nil {
		t.Error("expected error rendering on a closed browser")
	}
}

func TestLaunchWithMissingBinaryFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := Launch(ctx, Options{ChromeBin: "/nonexistent/chrome"}, utils.Discard())
	if err == nil {
		t.Fatal("expected launch error for a missing binary")
	}
}
