package content

import "testing"

func TestTokenomicsSumsToSupply(t *testing.T) {
	var pct, amount int64
	for _, a := range Tokenomics() {
		pct += a.Percentage
		amount += a.Amount
	}
	if pct != 100 {
		t.Fatalf("percentages sum to %d", pct)
	}
	if amount != TotalSupply {
		t.Fatalf("amounts sum to %d; want %d", amount, TotalSupply)
	}
	if got := Tokenomics()[1].Amount; got != 49_999_999 {
		t.Fatalf("5%% slice = %d", got)
	}
}

func TestTokenPageUsesFourTiers(t *testing.T) {
	p := TokenPage()
	if len(p.Tiers) != 4 || p.Tiers[3].WeeklyReward != 6248 {
		t.Fatalf("tiers = %+v", p.Tiers)
	}
	if len(p.Roadmap) != 4 || p.Roadmap[2].Status != "active" {
		t.Fatalf("roadmap = %+v", p.Roadmap)
	}
}

func TestRecentWinnersFromLatestGiveaways(t *testing.T) {
	g := GiveawaysPage()
	// 5 + 1 + 5 + 1 + 5 winners across the five latest giveaways
	if len(g.RecentWinners) != 17 {
		t.Fatalf("recent winners = %d", len(g.RecentWinners))
	}
	if g.RecentWinners[0].Name != "@AlooGold24242" || g.RecentWinners[0].Prize != "1M $TROK Each" {
		t.Fatalf("first winner = %+v", g.RecentWinners[0])
	}
	for _, p := range g.Previous {
		if p.Proof == "" {
			t.Errorf("%q has no proof link", p.Title)
		}
	}
}

func TestStaticSections(t *testing.T) {
	if n := len(Testimonials()); n != 7 {
		t.Fatalf("testimonials = %d", n)
	}
	if n := len(FAQs()); n != 6 {
		t.Fatalf("faqs = %d", n)
	}
	if l := LandingPage(); len(l.Sides) != 2 || len(l.Community) != 4 {
		t.Fatalf("landing = %+v", l)
	}
}
