package integration

import (
	"context"
	"errors"
	"testing"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/rewards"

	"github.com/google/uuid"
)

func TestStakeRepositoryLifecycle(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	repo := repository.NewStakeRepository(pool)

	owner := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(context.Background(), owner) })

	got, err := repo.FetchByOwner(ctx, owner)
	if err != nil || got != nil {
		t.Fatalf("fetch before create = %v, %v", got, err)
	}

	rec := &domain.StakeRecord{OwnerID: owner, Nickname: "Shrek", WalletAddress: "EQ-swamp"}
	rec.SetCounts(rewards.Counts{Common: 2, Boom: 1})
	created, err := repo.Create(ctx, rec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Status != domain.StakeActive || created.BoomCount != 1 {
		t.Fatalf("created = %+v", created)
	}

	if _, err := repo.Create(ctx, rec); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second create err = %v, want ErrConflict", err)
	}

	rec.SetCounts(rewards.Counts{Rare: 3})
	upserted, err := repo.Upsert(ctx, rec)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if upserted.ID != created.ID || upserted.CommonCount != 0 || upserted.RareCount != 3 {
		t.Fatalf("upsert did not replace in place: %+v", upserted)
	}

	nick := "Ogre"
	updated, err := repo.Update(ctx, owner, domain.StakePatch{Nickname: &nick})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Nickname != "Ogre" || updated.RareCount != 3 {
		t.Fatalf("updated = %+v", updated)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, r := range all {
		found = found || r.OwnerID == owner
	}
	if !found {
		t.Fatalf("list misses owner %s", owner)
	}

	if err := repo.Delete(ctx, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Update(ctx, owner, domain.StakePatch{Nickname: &nick}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update after delete err = %v", err)
	}
}

func TestProfileRepositoryEnsureAndRole(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	repo := repository.NewProfileRepository(pool)

	id := uuid.NewString()
	email := id[:8] + "@example.com"
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id) })

	p := &domain.Profile{ID: id, Email: email, Telegram: "@fiona", Role: domain.RoleUser}
	if _, err := repo.EnsureProfile(ctx, p); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// a second ensure keeps the existing row
	again, err := repo.EnsureProfile(ctx, &domain.Profile{ID: id, Email: email, Telegram: "@changed", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again.Telegram != "@fiona" {
		t.Fatalf("ensure overwrote telegram: %+v", again)
	}

	admin, err := repo.SetRole(ctx, email, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("role = %s", admin.Role)
	}

	list, err := repo.ListProfiles(ctx, []string{id, uuid.NewString()})
	if err != nil || len(list) != 1 {
		t.Fatalf("list profiles = %v, %v", list, err)
	}
}

func TestAuditRepositoryRecent(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	repo := repository.NewAuditRepository(pool)

	user := uuid.NewString()
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM audit_logs WHERE user_id = $1`, user) })

	for _, action := range []string{domain.AuditActionLogin, domain.AuditActionStakeSubmit} {
		cat := domain.AuditCategoryAuth
		if action == domain.AuditActionStakeSubmit {
			cat = domain.AuditCategoryStake
		}
		if err := repo.Create(ctx, &domain.AuditLog{UserID: user, Action: action, Category: cat, Details: map[string]interface{}{"n": 1}}); err != nil {
			t.Fatalf("create %s: %v", action, err)
		}
	}

	logs, err := repo.GetRecent(ctx, domain.AuditCategoryStake, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for _, l := range logs {
		if l.Category != domain.AuditCategoryStake {
			t.Fatalf("category filter leaked %q", l.Category)
		}
	}
	if len(logs) == 0 {
		t.Fatalf("no stake audit rows")
	}
}
