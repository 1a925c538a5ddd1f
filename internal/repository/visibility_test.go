package repository

import (
	"context"
	"testing"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

func seedGroup(t *testing.T, store *storage.RecordStore) {
	t.Helper()
	seed(t, store, storage.Users, []models.User{
		{ID: "p1", Username: "owner", Role: models.RolePrimary, GroupCode: "AAAA0001", Active: true},
		{ID: "m1", Username: "tenant", Role: models.RoleMember, GroupCode: "aaaa-0001", Active: true},
		{ID: "m2", Username: "lodger", Role: models.RoleMember, GroupCode: "AAAA0002", Active: true},
		{ID: "p2", Username: "neighbour", Role: models.RolePrimary, GroupCode: "BBBB0001", Active: true},
		{ID: "m3", Username: "other", Role: models.RoleMember, GroupCode: "BBBB0001", Active: true},
		{ID: "m4", Username: "orphan", Role: models.RoleMember, GroupCode: "GONE0001", Active: true},
	})
	seed(t, store, storage.GroupCodes, []models.GroupCode{
		{ID: "c1", Code: "AAAA0001", OwnerID: "p1"},
		{ID: "c2", Code: "AAAA0002", OwnerID: "p1", Used: true, UsedBy: "m2"},
		{ID: "c3", Code: "BBBB0001", OwnerID: "p2"},
	})
}

func TestGroupMembers(t *testing.T) {
	ctx := context.Background()
	repos, store := newTestRepos(t)
	seedGroup(t, store)

	tests := []struct {
		primary string
		want    []string
	}{
		{"p1", []string{"m1", "m2"}},
		{"p2", []string{"m3"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.primary, func(t *testing.T) {
			members, err := repos.Users.ListGroupMembers(ctx, tt.primary)
			if err != nil {
				t.Fatalf("ListGroupMembers failed: %v", err)
			}
			if len(members) != len(tt.want) {
				t.Fatalf("got %d members, want %v", len(members), tt.want)
			}
			for i, m := range members {
				if m.ID != tt.want[i] {
					t.Errorf("member %d = %s, want %s", i, m.ID, tt.want[i])
				}
			}
		})
	}

	ids, err := repos.GroupCodes.VisibleUserIDs(ctx, "p1")
	if err != nil {
		t.Fatalf("VisibleUserIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != "p1" || ids[1] != "m1" || ids[2] != "m2" {
		t.Errorf("VisibleUserIDs(p1) = %v", ids)
	}
}

func TestResolvePrimary(t *testing.T) {
	ctx := context.Background()
	repos, store := newTestRepos(t)
	seedGroup(t, store)

	tests := []struct {
		user  string
		want  string
		found bool
	}{
		{user: "p1", want: "p1", found: true},
		{user: "m1", want: "p1", found: true},
		{user: "m2", want: "p1", found: true},
		{user: "m3", want: "p2", found: true},
		{user: "m4", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			u, err := repos.Users.GetByID(ctx, tt.user)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			got, found, err := repos.GroupCodes.ResolvePrimary(ctx, u)
			if err != nil {
				t.Fatalf("ResolvePrimary failed: %v", err)
			}
			if found != tt.found || got != tt.want {
				t.Errorf("ResolvePrimary(%s) = %q, %v; want %q, %v", tt.user, got, found, tt.want, tt.found)
			}
		})
	}
}
