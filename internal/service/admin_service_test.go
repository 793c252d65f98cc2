package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository/mock"

	"go.uber.org/mock/gomock"
)

func stakeFor(owner string, common, boom int64, created time.Time) *domain.StakeRecord {
	return &domain.StakeRecord{
		ID: "row-" + owner, OwnerID: owner, Nickname: "nick-" + owner, WalletAddress: "EQ" + owner,
		CommonCount: common, BoomCount: boom, Status: domain.StakeActive, CreatedAt: created,
	}
}

func TestAdminRowsJoinsProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	stakes := mock.NewMockStakeStore(ctrl)
	profiles := mock.NewMockProfileStore(ctrl)

	created := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	stakes.EXPECT().List(gomock.Any()).Return([]*domain.StakeRecord{
		stakeFor("a", 1110, 0, created),
		stakeFor("b", 0, 2, created),
	}, nil).Times(2)
	profiles.EXPECT().ListProfiles(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []string) ([]*domain.Profile, error) {
			sort.Strings(ids)
			if strings.Join(ids, ",") != "a,b" {
				t.Errorf("ids = %v", ids)
			}
			return []*domain.Profile{{ID: "a", Email: "a@example.com", Telegram: "@a"}}, nil
		}).Times(1)

	s := NewAdminService(nil)
	rows, err := s.Rows(context.Background(), stakes, profiles)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Email != "a@example.com" || rows[0].Telegram != "@a" || rows[0].WeeklyReward != 1733820 {
		t.Fatalf("row a = %+v", rows[0])
	}
	if rows[1].Email != notAvailable || rows[1].Telegram != notAvailable || rows[1].TotalPickaxes != 8 {
		t.Fatalf("row b = %+v", rows[1])
	}

	// "a" is cached now; only "b" is looked up again
	profiles.EXPECT().ListProfiles(gomock.Any(), []string{"b"}).Return(nil, nil)
	if _, err := s.Rows(context.Background(), stakes, profiles); err != nil {
		t.Fatalf("second Rows: %v", err)
	}
}

func TestAdminRowsBatchesLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	stakes := mock.NewMockStakeStore(ctrl)
	profiles := mock.NewMockProfileStore(ctrl)

	var records []*domain.StakeRecord
	for i := 0; i < 2*profileBatchSize+7; i++ {
		records = append(records, stakeFor(fmt.Sprintf("owner-%03d", i), 1, 0, time.Now()))
	}
	stakes.EXPECT().List(gomock.Any()).Return(records, nil)

	var mu sync.Mutex
	var sizes []int
	profiles.EXPECT().ListProfiles(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []string) ([]*domain.Profile, error) {
			mu.Lock()
			sizes = append(sizes, len(ids))
			mu.Unlock()
			if ids[0] == "owner-050" {
				return nil, errors.New("boom")
			}
			out := make([]*domain.Profile, len(ids))
			for i, id := range ids {
				out[i] = &domain.Profile{ID: id, Email: id + "@example.com"}
			}
			return out, nil
		}).Times(3)

	rows, err := NewAdminService(nil).Rows(context.Background(), stakes, profiles)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	sort.Ints(sizes)
	if fmt.Sprint(sizes) != "[7 50 50]" {
		t.Fatalf("batch sizes = %v", sizes)
	}
	var na int
	for _, r := range rows {
		if r.Email == notAvailable {
			na++
		}
	}
	if na != profileBatchSize {
		t.Fatalf("rows without profile = %d; want the failed batch", na)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []domain.StakeRow{{
		StakeRecord: *stakeFor("a", 2, 1, time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)),
		Email:       "a@example.com",
		Telegram:    "@a, the holder",
	}}
	rows[0].TotalPickaxes = 6
	rows[0].WeeklyReward = 9372

	var buf bytes.Buffer
	if err := NewAdminService(nil).WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 2 || strings.Join(got[0], ",") != strings.Join(CSVHeader, ",") {
		t.Fatalf("csv = %v", got)
	}
	want := []string{"a@example.com", "@a, the holder", "nick-a", "EQa", "2", "0", "0", "1", "6", "9372", "active", "2025-01-02"}
	if strings.Join(got[1], "|") != strings.Join(want, "|") {
		t.Fatalf("row = %v; want %v", got[1], want)
	}
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2025, 7, 9, 15, 4, 5, 0, time.UTC)
	if got := ExportFileName(at); got != "sherk-staking-2025-07-09.csv" {
		t.Fatalf("ExportFileName = %s", got)
	}
}

func TestDeleteStakeAudits(t *testing.T) {
	ctrl := gomock.NewController(t)
	stakes := mock.NewMockStakeStore(ctrl)
	stakes.EXPECT().Delete(gomock.Any(), "owner-1").Return(nil)

	audit := &memAudit{}
	s := NewAdminService(&AuditService{repo: audit})
	if err := s.DeleteStake(context.Background(), "admin-1", "owner-1", stakes); err != nil {
		t.Fatalf("DeleteStake: %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionAdminStakeDelete {
		t.Fatalf("audit = %+v", audit.entries)
	}
}
