package cache

import (
	"context"
	"testing"
)

func TestDisabledCacheDegradesToMiss(t *testing.T) {
	c := &Redis{}
	ctx := context.Background()

	c.SetUnread(ctx, 1, 5, 0)
	if _, _, ok := c.GetUnread(ctx, 1); ok {
		t.Error("disabled cache reported a hit")
	}
	c.InvalidateUnread(ctx, 1)

	if c.Enabled() {
		t.Error("cache without client should be disabled")
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping on disabled cache should fail")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Redis
	if _, _, ok := c.GetUnread(context.Background(), 1); ok {
		t.Error("nil cache reported a hit")
	}
}

func TestUnreadKeys(t *testing.T) {
	if got := unreadKey(42); got != "notifications:unread:42" {
		t.Errorf("unreadKey = %q", got)
	}
	if got := generationKey(42); got != "notifications:unread:42:gen" {
		t.Errorf("generationKey = %q", got)
	}
}

func TestParseInt64(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
	}{
		{"7", 7},
		{nil, 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseInt64(tt.in); got != tt.want {
			t.Errorf("parseInt64(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
