package service

import (
	"testing"

	"fellowship_backend/internal/repository"
)

func TestBuildRankEntries(t *testing.T) {
	rows := []repository.UserAmount{
		{UserID: 7, Total: 900},
		{UserID: 3, Total: 500},
		{UserID: 9, Total: 500}, // 与上一行平分：先出现者名次在前
		{UserID: 4, Total: 120},
	}
	entries := buildRankEntries(rows)
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	for i, entry := range entries {
		if entry.Rank != i+1 {
			t.Fatalf("position %d has rank %d, want %d", i, entry.Rank, i+1)
		}
		if entry.UserID != rows[i].UserID || entry.TotalPoints != rows[i].Total {
			t.Fatalf("entry %d = %+v, want user %d total %d", i, entry, rows[i].UserID, rows[i].Total)
		}
	}
}

func TestBuildRankEntriesEmpty(t *testing.T) {
	if entries := buildRankEntries(nil); len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}
