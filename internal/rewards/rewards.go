// Package rewards turns declared NFT holdings into pickaxes and $SHERK payouts.
package rewards

import "fmt"

// WeeklyRewardPerPickaxe is the weekly $SHERK payout for a single pickaxe.
const WeeklyRewardPerPickaxe = 1562

// MaxCountPerTier bounds a single tier count. It sits far above any
// collection supply and keeps every payout figure inside int64.
const MaxCountPerTier = 1_000_000

const (
	weeksPerMonth = 4
	weeksPerYear  = 52
)

// Tier describes one NFT rarity tier.
type Tier struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Pickaxes     int64  `json:"pickaxes"`
	WeeklyReward int64  `json:"weekly_reward"`
}

var tiers = []Tier{
	{Key: "common_nfts", Label: "Common NFTs", Pickaxes: 1, WeeklyReward: 1 * WeeklyRewardPerPickaxe},
	{Key: "rare_nfts", Label: "Rare NFTs", Pickaxes: 2, WeeklyReward: 2 * WeeklyRewardPerPickaxe},
	{Key: "ultra_rare_nfts", Label: "Ultra Rare NFTs", Pickaxes: 3, WeeklyReward: 3 * WeeklyRewardPerPickaxe},
	{Key: "boom_nfts", Label: "BOOM NFTs", Pickaxes: 4, WeeklyReward: 4 * WeeklyRewardPerPickaxe},
}

// Tiers returns the tier table in display order (common first).
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Counts holds the number of NFTs held per tier.
type Counts struct {
	Common    int64 `json:"common_nfts"`
	Rare      int64 `json:"rare_nfts"`
	UltraRare int64 `json:"ultra_rare_nfts"`
	Boom      int64 `json:"boom_nfts"`
}

// IsZero reports whether no NFT is declared at all.
func (c Counts) IsZero() bool {
	return c.Common == 0 && c.Rare == 0 && c.UltraRare == 0 && c.Boom == 0
}

// Validate rejects negative counts and counts above MaxCountPerTier.
func (c Counts) Validate() error {
	for i, n := range c.values() {
		if n < 0 {
			return fmt.Errorf("%s must not be negative (got %d)", tiers[i].Key, n)
		}
		if n > MaxCountPerTier {
			return fmt.Errorf("%s must be at most %d (got %d)", tiers[i].Key, MaxCountPerTier, n)
		}
	}
	return nil
}

func (c Counts) values() [4]int64 {
	return [4]int64{c.Common, c.Rare, c.UltraRare, c.Boom}
}

// Rewards are the figures derived from Counts. They are never stored.
type Rewards struct {
	TotalPickaxes     int64 `json:"total_pickaxes"`
	WeeklyReward      int64 `json:"weekly_reward"`
	MonthlyReward     int64 `json:"monthly_reward"`
	Total52WeekReward int64 `json:"total_52_week_reward"`
}

// Compute maps counts to pickaxes and payouts using the four-tier table.
func Compute(c Counts) Rewards {
	var pickaxes, weekly int64
	for i, n := range c.values() {
		pickaxes += n * tiers[i].Pickaxes
		weekly += n * tiers[i].WeeklyReward
	}
	return Rewards{
		TotalPickaxes:     pickaxes,
		WeeklyReward:      weekly,
		MonthlyReward:     weekly * weeksPerMonth,
		Total52WeekReward: weekly * weeksPerYear,
	}
}
