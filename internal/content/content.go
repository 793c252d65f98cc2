// Package content holds the static marketing data served to the site.
package content

import "sherk_portal/internal/rewards"

// TotalSupply is the fixed $SHERK supply.
const TotalSupply int64 = 999_999_999

type Side struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
	CTA     string `json:"cta"`
	Path    string `json:"path"`
}

type CommunityLink struct {
	Name    string `json:"name"`
	Members string `json:"members"`
	URL     string `json:"url,omitempty"`
}

type Landing struct {
	Heading   string          `json:"heading"`
	Sides     []Side          `json:"sides"`
	Community []CommunityLink `json:"community"`
}

type Allocation struct {
	Label      string `json:"label"`
	Percentage int64  `json:"percentage"`
	Amount     int64  `json:"amount"`
}

type RoadmapPhase struct {
	Phase       string `json:"phase"`
	Title       string `json:"title"`
	Status      string `json:"status"` // completed, active, upcoming
	Description string `json:"description"`
}

type Token struct {
	Symbol      string          `json:"symbol"`
	TotalSupply int64           `json:"total_supply"`
	Tokenomics  []Allocation    `json:"tokenomics"`
	Roadmap     []RoadmapPhase  `json:"roadmap"`
	Tiers       []rewards.Tier  `json:"tiers"`
	Community   []CommunityLink `json:"community"`
}

type OngoingGiveaway struct {
	Title        string   `json:"title"`
	Prize        string   `json:"prize"`
	TimeLeft     string   `json:"time_left"`
	Entries      int      `json:"entries"`
	MaxEntries   int      `json:"max_entries"`
	Requirements []string `json:"requirements"`
}

type PastGiveaway struct {
	Title       string   `json:"title"`
	Winners     []string `json:"winners"`
	Description string   `json:"description"`
	Proof       string   `json:"proof"`
}

type Winner struct {
	Name     string `json:"name"`
	Prize    string `json:"prize"`
	Verified bool   `json:"verified"`
}

type Giveaways struct {
	Ongoing       []OngoingGiveaway `json:"ongoing"`
	Previous      []PastGiveaway    `json:"previous"`
	RecentWinners []Winner          `json:"recent_winners"`
	JoinURL       string            `json:"join_url"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Testimonial struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Image  string `json:"image"`
}

const telegramInvite = "https://t.me/+LjE29TZp-1FlMDQ9"

func communityLinks() []CommunityLink {
	return []CommunityLink{
		{Name: "Telegram", Members: "5,000+", URL: telegramInvite},
		{Name: "Twitter/X", Members: "2,500+", URL: "https://x.com/OnlyNSM"},
		{Name: "Discord", Members: "1,200+"},
		{Name: "YouTube", Members: "800+"},
	}
}

func LandingPage() Landing {
	return Landing{
		Heading: "Choose Your Universe",
		Sides: []Side{
			{
				Key:     "giveaways",
				Title:   "NSM Giveaways",
				Tagline: "Authentic giveaways from the Meme King. Join our community and win real KAS. No lies, no cheats - just genuine opportunities.",
				CTA:     "Enter Giveaways Portal",
				Path:    "/giveaways",
			},
			{
				Key:     "token",
				Title:   "NSM Token",
				Tagline: "Revolutionary KRC20 token with NFT staking utility. Hold the NFT, earn the meme. Join the future of community-driven rewards.",
				CTA:     "Explore NSM Token",
				Path:    "/token",
			},
		},
		Community: communityLinks(),
	}
}

var allocations = []struct {
	label string
	pct   int64
}{
	{"Community Open Mint", 70},
	{"Future Developments", 5},
	{"Airdrop for NFT Holders", 5},
	{"Giveaways & Marketing", 5},
	{"Exchange Listings, Dex & Pools", 5},
	{"Team (In Future)", 5},
	{"Dev Wallet", 5},
}

// Tokenomics splits TotalSupply by allocation; the amounts sum to TotalSupply.
func Tokenomics() []Allocation {
	out := make([]Allocation, len(allocations))
	var assigned int64
	for i, a := range allocations {
		out[i] = Allocation{Label: a.label, Percentage: a.pct, Amount: TotalSupply * a.pct / 100}
		assigned += out[i].Amount
	}
	// rounding remainder goes to the community mint
	out[0].Amount += TotalSupply - assigned
	return out
}

func TokenPage() Token {
	return Token{
		Symbol:      "$SHERK",
		TotalSupply: TotalSupply,
		Tokenomics:  Tokenomics(),
		Roadmap: []RoadmapPhase{
			{Phase: "Phase 1", Title: "NFT Mint", Status: "completed", Description: "Successful launch of $SHERK NFT collection with utility features"},
			{Phase: "Phase 2", Title: "Bot Integration", Status: "completed", Description: "Telegram bot for community management and giveaway automation"},
			{Phase: "Phase 3", Title: "NFT Staking", Status: "active", Description: "Launch staking platform with reward distribution system"},
			{Phase: "Phase 4", Title: "Multi-chain", Status: "upcoming", Description: "Expand to multiple blockchain networks for broader accessibility"},
		},
		Tiers:     rewards.Tiers(),
		Community: communityLinks(),
	}
}

func previousGiveaways() []PastGiveaway {
	return []PastGiveaway{
		{
			Title:       "1M $TROK Each",
			Winners:     []string{"@AlooGold24242", "@O_Nimsi", "@Adityapr1Marwan", "@ecnew24", "@BaakiBaaki001"},
			Description: "Winners are selected randomly using a verified tool like http://Random.org to ensure fairness, as recommended by contest management best practices. You all won 🏆 1M $TROK Each congratulations 🥂",
			Proof:       "https://x.com/OnlyNSM/status/1938871630387982473",
		},
		{
			Title:       "PXMUTANT NFT GIVEAWAY",
			Winners:     []string{"@The__Hitman_"},
			Description: "Utility attached NFT from $MUTANT collection! The winner is @The__Hitman_.",
			Proof:       "https://x.com/OnlyNSM/status/1937501498742833417",
		},
		{
			Title:       "2nd week 1M $TROK Each",
			Winners:     []string{"@Onlyoneguy01", "@httpudhay", "@erricccccc", "@Bellrock157", "@AlooGold24242"},
			Description: "For 1M $TROK Each Winners are :- Congratulations 🍻 too all the lucky winners 🍀",
			Proof:       "https://x.com/OnlyNSM/status/1936195351503143226",
		},
		{
			Title:       "NSM GIVEAWAYS Battle card",
			Winners:     []string{"@Dkapital_01"},
			Description: "The winner of 'NSM GIVEAWAYS' Battle card is @Dkapital_01. To collect your battle card go to @kasbtc_krc20 TG and Tag the developer ( Samira $KASBTC )",
			Proof:       "https://x.com/OnlyNSM/status/1935342313099952373",
		},
		{
			Title:       "5 lucky 🍀 Winners 🏆 🎉",
			Winners:     []string{"@NolaGirl_73", "@_DrLiberty", "@Yeomansprings", "@BaakiBaaki001", "@AbdullahiD62152"},
			Description: "Your rewards will be sent into your Given Addresses in short period of time 1M $TROK Tokens to each 🏆",
			Proof:       "https://x.com/OnlyNSM/status/1934259845802438989",
		},
		{
			Title:       "KasWarriors Winner",
			Winners:     []string{"@novoiceless11"},
			Description: "The winner is @novoiceless11, who followed all accounts, tagged three friends, and provided a valid $KAS wallet address.",
			Proof:       "https://x.com/OnlyNSM/status/1933131983263326551",
		},
		{
			Title:       "4 NFT's Giveaway",
			Winners:     []string{"@Plutokaspa"},
			Description: "4 NFT's Giveaway won by @Plutokaspa. The winner completed all the tasks as mentioned in the Giveaway.",
			Proof:       "https://x.com/OnlyNSM/status/1932804009854971970",
		},
		{
			Title:       "$KORN Giveaway Winners",
			Winners:     []string{"@CNinja75788", "@MYGBIT1", "@Ayobami029", "@O_Nimsi", "@KDarklove"},
			Description: "The winners are chosen based on their likes, reposts, follows, tagged friends, and submitted Telegram screenshots with Kasware addresses.",
			Proof:       "https://x.com/OnlyNSM/status/1932456065175810201",
		},
		{
			Title:       "Gifted NFT + $KASPUNK NFT #255",
			Winners:     []string{"@HXC_VOX"},
			Description: "The winner was @HXC_VOX 🏆 and that NFT worth around 30,000 $KASPA according to the traits 🔥",
			Proof:       "https://x.com/OnlyNSM/status/1931654106953003192",
		},
		{
			Title:       "realKranky giveaway",
			Winners:     []string{"@andyzav11", "@AbdullahiD62152", "@MYGBIT1"},
			Description: "🥇 - Giggsy 🏆 (@andyzav11), 🥈- ISTIQAAMAH 🏆(@AbdullahiD62152), 🥉- Dr Pixel 🏆(@MYGBIT1)",
			Proof:       "https://x.com/OnlyNSM/status/1930269529017594315",
		},
		{
			Title:       "500 $KASPA GIVEAWAY ALERT",
			Winners:     []string{"@ladylorecat"},
			Description: "1 Winner 🏆 = 500 $KASPA. The official $KOMA whale 🐳 is @ladylorecat as we know and believe 👏",
			Proof:       "https://x.com/OnlyNSM/status/1931925762313269560",
		},
		{
			Title:       "Atomic #KRC20 Collaboration",
			Winners:     []string{},
			Description: "NSM Giveaways x Atomic #KRC20 Collaboration Alert! Community-driven event packed with rewards.",
			Proof:       "https://x.com/OnlyNSM/status/1934566290821439937",
		},
	}
}

// recentGiveaways is how many of the latest giveaways feed RecentWinners.
const recentGiveaways = 5

func GiveawaysPage() Giveaways {
	previous := previousGiveaways()
	var winners []Winner
	for _, g := range previous[:min(recentGiveaways, len(previous))] {
		for _, w := range g.Winners {
			winners = append(winners, Winner{Name: w, Prize: g.Title, Verified: true})
		}
	}
	return Giveaways{
		Ongoing: []OngoingGiveaway{
			{
				Title: "Weekly KAS Drop", Prize: "2,500 KAS", TimeLeft: "3 Days Left", Entries: 847, MaxEntries: 1000,
				Requirements: []string{"Join NSM Telegram Channel", "Hold at least 1 NSM NFT", "Invite 1 friend to community"},
			},
			{
				Title: "Community Milestone", Prize: "1,000 KAS Bonus", TimeLeft: "7 Days Left", Entries: 5247, MaxEntries: 6000,
				Requirements: []string{"Help reach 6,000 Telegram members", "Active community participation", "Share our mission"},
			},
		},
		Previous:      previous,
		RecentWinners: winners,
		JoinURL:       telegramInvite,
	}
}

func FAQs() []FAQ {
	return []FAQ{
		{"What are the benefits of NSM Giveaways?", "NSM Giveaways offers real rewards, community engagement, and transparent processes. Participants can win $KAS, KRC20 tokens, and NFTs while being part of a trusted and fun community."},
		{"Why is NSM Giveaways a core project for #KRC20 & #KRC721?", "NSM Giveaways actively promotes and supports the KRC20 and KRC721 ecosystems by providing exposure, education, and real utility through regular, high-quality giveaways."},
		{"What is the future plan of this project?", "We plan to expand our partnerships, introduce more exclusive giveaways, and build new features that make participation even easier and more rewarding for the community."},
		{"What else is in the store of NSM Giveaways?", "Expect collaborations with top projects, special event giveaways, educational content, and more ways for the community to get involved and win."},
		{"How can I get involved with NSM Giveaways community?", "Join our Telegram, follow us on X and YouTube, participate in giveaways, and invite friends. Everyone is welcome to be part of the NSM family!"},
		{"What makes NSM GIVEAWAYS unique from other projects?", "Our focus on transparency, fairness, and genuine community building sets us apart. We deliver real rewards, no spam or scams, and always put our participants first."},
	}
}

func Testimonials() []Testimonial {
	return []Testimonial{
		{Text: "I love it! Keep up the great work, brother, you are doing an amazing job for the community! I am pretty sure you will be very successful once Kaspa network will gain more attention!", Author: "Krex Dev", Image: "/krex.jpg"},
		{Text: "Your a wolf trust is there from day one, thanks man really appreciate that", Author: "Wolfy Dev", Image: "/wolfy_main.jpg"},
		{Text: "Of course, man! I like what you're doing for the community. Keep it up 👍🏽", Author: "Community Member", Image: "/andrew.jpg"},
		{Text: "I really like what you're doing in this space! Grinding hard!", Author: "Kranky Dev", Image: "/Krunky.jpg"},
		{Text: "Love what you do man! i always get happy when i see you around everywhere. gives me a big smile. and gives me energy too! just wanted to let you know!", Author: "From The Mayor Of Wolfy 👀", Image: "/Wolfy Mayor.jpg"},
		{Text: "You put in a lot of work so definitely well deserved that you get in nice and early with the best projects.", Author: "CryptoEllisYT (Youtube Influencer)", Image: "/ellis.jpg"},
		{Text: "Hey brother! Hope everythings been going well. Thanks for always keeping things bullish and doing what you do!", Author: "KASEI Dev", Image: "/kasei.jpg"},
	}
}
