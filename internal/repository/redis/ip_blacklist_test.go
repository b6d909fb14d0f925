package redis

import (
	"context"
	"testing"
)

func TestIPBlacklistRepository_AddContainsRemove(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewIPBlacklistRepository(client, "blacklist:ips")

	ctx := context.Background()

	contains, err := repo.Contains(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if contains {
		t.Fatal("expected empty denylist")
	}

	if err := repo.Add(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	contains, err = repo.Contains(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if !contains {
		t.Fatal("expected ip to be denylisted")
	}

	// Adding twice is idempotent.
	if err := repo.Add(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("second Add returned error: %v", err)
	}

	if err := repo.Remove(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	contains, err = repo.Contains(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if contains {
		t.Fatal("expected ip to be removed")
	}
}

func TestIPBlacklistRepository_RemoveMissing(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewIPBlacklistRepository(client, "blacklist:ips")

	if err := repo.Remove(context.Background(), "198.51.100.4"); err != nil {
		t.Fatalf("Remove of absent member returned error: %v", err)
	}
}
