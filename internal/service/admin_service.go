package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/rewards"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sourcegraph/conc/pool"
)

const (
	profileCacheSize = 2048
	profileBatchSize = 50
	profileWorkers   = 4
	notAvailable     = "N/A"
)

// CSVHeader is the first line of the staking export.
var CSVHeader = []string{
	"Email", "Telegram", "Nickname", "Wallet Address",
	"Common NFTs", "Rare NFTs", "Ultra Rare NFTs", "Boom NFTs",
	"Total Pickaxes", "Weekly Reward", "Status", "Created At",
}

// AdminService builds the admin staking table and export.
type AdminService struct {
	profiles *lru.Cache
	audit    *AuditService
}

// NewAdminService creates a new admin service
func NewAdminService(audit *AuditService) *AdminService {
	cache, err := lru.New(profileCacheSize)
	if err != nil {
		panic(err)
	}
	return &AdminService{profiles: cache, audit: audit}
}

// Rows lists every stake newest first, joined with the owner's profile.
// Owners without a readable profile show N/A.
func (s *AdminService) Rows(ctx context.Context, stakes repository.StakeStore, profiles repository.ProfileStore) ([]domain.StakeRow, error) {
	records, err := stakes.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := s.lookupProfiles(ctx, profiles, records)

	rows := make([]domain.StakeRow, 0, len(records))
	for _, rec := range records {
		row := domain.StakeRow{
			StakeRecord: *rec,
			Email:       notAvailable,
			Telegram:    notAvailable,
			Rewards:     rewards.Compute(rec.Counts()),
		}
		if p, ok := byID[rec.OwnerID]; ok {
			if p.Email != "" {
				row.Email = p.Email
			}
			if p.Telegram != "" {
				row.Telegram = p.Telegram
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *AdminService) lookupProfiles(ctx context.Context, profiles repository.ProfileStore, records []*domain.StakeRecord) map[string]*domain.Profile {
	found := make(map[string]*domain.Profile, len(records))
	var missing []string
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.OwnerID] {
			continue
		}
		seen[rec.OwnerID] = true
		if v, ok := s.profiles.Get(rec.OwnerID); ok {
			found[rec.OwnerID] = v.(*domain.Profile)
			continue
		}
		missing = append(missing, rec.OwnerID)
	}
	if len(missing) == 0 || profiles == nil {
		return found
	}

	batches := make([][]*domain.Profile, (len(missing)+profileBatchSize-1)/profileBatchSize)
	p := pool.New().WithMaxGoroutines(profileWorkers).WithContext(ctx)
	for i := range batches {
		start := i * profileBatchSize
		end := min(start+profileBatchSize, len(missing))
		ids := missing[start:end]
		p.Go(func(ctx context.Context) error {
			got, err := profiles.ListProfiles(ctx, ids)
			if err != nil {
				return fmt.Errorf("profiles %d-%d: %w", start, end, err)
			}
			batches[i] = got
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		logger.WithContext(ctx).Warn("admin profile lookup incomplete", "error", err, "missing", len(missing))
	}

	for _, batch := range batches {
		for _, prof := range batch {
			s.profiles.Add(prof.ID, prof)
			found[prof.ID] = prof
		}
	}
	return found
}

// ForgetProfile drops a cached profile.
func (s *AdminService) ForgetProfile(id string) {
	s.profiles.Remove(id)
}

// WriteCSV writes the export with CSVHeader as the first line.
func (s *AdminService) WriteCSV(w io.Writer, rows []domain.StakeRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.UTC().Format("2006-01-02")
		}
		record := []string{
			r.Email,
			r.Telegram,
			r.Nickname,
			r.WalletAddress,
			strconv.FormatInt(r.CommonCount, 10),
			strconv.FormatInt(r.RareCount, 10),
			strconv.FormatInt(r.UltraRareCount, 10),
			strconv.FormatInt(r.BoomCount, 10),
			strconv.FormatInt(r.TotalPickaxes, 10),
			strconv.FormatInt(r.WeeklyReward, 10),
			string(r.Status),
			created,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is the download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("sherk-staking-%s.csv", t.UTC().Format("2006-01-02"))
}

// Export writes the full table as CSV and records the export.
func (s *AdminService) Export(ctx context.Context, adminID string, stakes repository.StakeStore, profiles repository.ProfileStore, w io.Writer) (int, error) {
	rows, err := s.Rows(ctx, stakes, profiles)
	if err != nil {
		return 0, err
	}
	if err := s.WriteCSV(w, rows); err != nil {
		return 0, err
	}
	if s.audit != nil {
		s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminExport, map[string]interface{}{"rows": len(rows)})
	}
	return len(rows), nil
}

// DeleteStake removes one owner's stake record.
func (s *AdminService) DeleteStake(ctx context.Context, adminID, ownerID string, stakes repository.StakeStore) error {
	if err := stakes.Delete(ctx, ownerID); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminStakeDelete, map[string]interface{}{"owner_id": ownerID})
	}
	return nil
}
