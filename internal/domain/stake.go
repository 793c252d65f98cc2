package domain

import (
	"time"

	"sherk_portal/internal/rewards"
)

type StakeStatus string

const (
	StakeActive   StakeStatus = "active"
	StakeInactive StakeStatus = "inactive"
	StakePending  StakeStatus = "pending"
)

func (s StakeStatus) Valid() bool {
	switch s {
	case StakeActive, StakeInactive, StakePending:
		return true
	}
	return false
}

// StakeRecord is the single sherk_stakes row owned by one user.
type StakeRecord struct {
	ID             string      `db:"id" json:"id,omitempty"`
	OwnerID        string      `db:"user_id" json:"user_id"`
	Nickname       string      `db:"nickname" json:"nickname"`
	WalletAddress  string      `db:"wallet_address" json:"wallet_address"`
	CommonCount    int64       `db:"common_nfts" json:"common_nfts"`
	RareCount      int64       `db:"rare_nfts" json:"rare_nfts"`
	UltraRareCount int64       `db:"ultra_rare_nfts" json:"ultra_rare_nfts"`
	BoomCount      int64       `db:"boom_nfts" json:"boom_nfts"`
	Status         StakeStatus `db:"status" json:"status"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

func (r *StakeRecord) Counts() rewards.Counts {
	return rewards.Counts{
		Common:    r.CommonCount,
		Rare:      r.RareCount,
		UltraRare: r.UltraRareCount,
		Boom:      r.BoomCount,
	}
}

func (r *StakeRecord) SetCounts(c rewards.Counts) {
	r.CommonCount = c.Common
	r.RareCount = c.Rare
	r.UltraRareCount = c.UltraRare
	r.BoomCount = c.Boom
}

// StakePatch is a partial update; nil fields are left untouched.
type StakePatch struct {
	Nickname      *string      `json:"nickname,omitempty"`
	WalletAddress *string      `json:"wallet_address,omitempty"`
	Common        *int64       `json:"common_nfts,omitempty"`
	Rare          *int64       `json:"rare_nfts,omitempty"`
	UltraRare     *int64       `json:"ultra_rare_nfts,omitempty"`
	Boom          *int64       `json:"boom_nfts,omitempty"`
	Status        *StakeStatus `json:"status,omitempty"`
}

// Apply copies the set fields of p onto r.
func (p StakePatch) Apply(r *StakeRecord) {
	if p.Nickname != nil {
		r.Nickname = *p.Nickname
	}
	if p.WalletAddress != nil {
		r.WalletAddress = *p.WalletAddress
	}
	if p.Common != nil {
		r.CommonCount = *p.Common
	}
	if p.Rare != nil {
		r.RareCount = *p.Rare
	}
	if p.UltraRare != nil {
		r.UltraRareCount = *p.UltraRare
	}
	if p.Boom != nil {
		r.BoomCount = *p.Boom
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}

// StakeRow is a stake joined with its owner's profile fields for the admin table.
type StakeRow struct {
	StakeRecord
	Email    string `json:"email"`
	Telegram string `json:"telegram"`
	rewards.Rewards
}
