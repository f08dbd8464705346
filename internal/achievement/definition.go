package achievement

import (
	"time"

	"tradelog/internal/stats"
)

type Category string

const (
	CategoryMilestone  Category = "milestone"
	CategoryDiscipline Category = "discipline"
	CategoryStreak     Category = "streak"
	CategoryGrowth     Category = "growth"
	CategorySocial     Category = "social"
	CategoryDedication Category = "dedication"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Operator string

const (
	OpGTE Operator = "gte"
	OpLTE Operator = "lte"
	OpEQ  Operator = "eq"
)

// Requirement compares one statistic, optionally restricted to a timeframe,
// against Target.
type Requirement struct {
	Type      string          `json:"type"`
	Target    float64         `json:"target"`
	Operator  Operator        `json:"operator"`
	Timeframe stats.Timeframe `json:"timeframe,omitempty"`
}

type Reward struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type Definition struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     Category      `json:"category"`
	Tier         Tier          `json:"tier"`
	Rarity       Rarity        `json:"rarity"`
	Requirements []Requirement `json:"requirements"`
	Rewards      []Reward      `json:"rewards"`
	MaxProgress  float64       `json:"maxProgress"`
}

// Challenge is a definition that can only be earned inside its window.
type Challenge struct {
	Definition
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

func xp(n string) Reward {
	return Reward{Type: "xp", Value: n, Description: n + " experience points"}
}

func badge(name string) Reward {
	return Reward{Type: "badge", Value: name, Description: "Badge: " + name}
}

func title(name string) Reward {
	return Reward{Type: "title", Value: name, Description: "Title: " + name}
}

func gte(kind string, target float64) Requirement {
	return Requirement{Type: kind, Target: target, Operator: OpGTE}
}

func within(r Requirement, tf stats.Timeframe) Requirement {
	r.Timeframe = tf
	return r
}

func define(id, name, desc string, c Category, t Tier, r Rarity, maxProgress float64, reqs []Requirement, rewards ...Reward) Definition {
	return Definition{
		ID:           id,
		Name:         name,
		Description:  desc,
		Category:     c,
		Tier:         t,
		Rarity:       r,
		Requirements: reqs,
		Rewards:      rewards,
		MaxProgress:  maxProgress,
	}
}

func all(reqs ...Requirement) []Requirement { return reqs }

// Catalog returns the static achievement definitions.
func Catalog() []Definition {
	return []Definition{
		define("first-trade", "First Trade", "Log your first trade",
			CategoryMilestone, TierBronze, RarityCommon, 1,
			all(gte(stats.KindTrades, 1)), xp("10")),
		define("trading-apprentice", "Trading Apprentice", "Log 10 trades",
			CategoryMilestone, TierBronze, RarityCommon, 10,
			all(gte(stats.KindTrades, 10)), xp("50")),
		define("seasoned-trader", "Seasoned Trader", "Log 50 trades",
			CategoryMilestone, TierSilver, RarityUncommon, 50,
			all(gte(stats.KindTrades, 50)), xp("200"), badge("Seasoned")),
		define("trading-veteran", "Trading Veteran", "Log 100 trades",
			CategoryMilestone, TierGold, RarityRare, 100,
			all(gte(stats.KindTrades, 100)), xp("500"), title("Veteran")),
		define("rule-follower", "Rule Follower", "Keep 80% compliance over at least 10 trades",
			CategoryDiscipline, TierSilver, RarityUncommon, 80,
			all(gte(stats.KindCompliance, 80), gte(stats.KindTrades, 10)), xp("100")),
		define("discipline-master", "Discipline Master", "Keep 95% compliance over at least 50 trades",
			CategoryDiscipline, TierPlatinum, RarityEpic, 95,
			all(gte(stats.KindCompliance, 95), gte(stats.KindTrades, 50)), xp("750"), title("Disciplined")),
		define("perfect-week", "Perfect Week", "Follow every rule on at least 5 trades in 7 days",
			CategoryDiscipline, TierGold, RarityRare, 100,
			all(within(gte(stats.KindCompliance, 100), stats.Weekly), within(gte(stats.KindTrades, 5), stats.Weekly)),
			xp("300"), badge("Perfect Week")),
		define("consistency-king", "Consistency King", "Keep 90% compliance over 20 trades in 30 days",
			CategoryDiscipline, TierPlatinum, RarityEpic, 90,
			all(within(gte(stats.KindCompliance, 90), stats.Monthly), within(gte(stats.KindTrades, 20), stats.Monthly)),
			xp("600"), title("Consistent")),
		define("streak-starter", "Streak Starter", "3 compliant trades in a row",
			CategoryStreak, TierBronze, RarityCommon, 3,
			all(gte(stats.KindStreak, 3)), xp("30")),
		define("streak-master", "Streak Master", "10 compliant trades in a row",
			CategoryStreak, TierGold, RarityRare, 10,
			all(gte(stats.KindStreak, 10)), xp("250"), badge("On Fire")),
		define("unstoppable", "Unstoppable", "25 compliant trades in a row",
			CategoryStreak, TierDiamond, RarityLegendary, 25,
			all(gte(stats.KindStreak, 25)), xp("1000"), title("Unstoppable")),
		define("first-profit", "First Profit", "Grow the portfolio above its starting value",
			CategoryGrowth, TierBronze, RarityCommon, 0.01,
			all(gte(stats.KindGrowth, 0.01)), xp("25")),
		define("growth-5", "Steady Growth", "Grow the portfolio by 5%",
			CategoryGrowth, TierSilver, RarityUncommon, 5,
			all(gte(stats.KindGrowth, 5)), xp("100")),
		define("growth-25", "Compounding", "Grow the portfolio by 25%",
			CategoryGrowth, TierGold, RarityRare, 25,
			all(gte(stats.KindGrowth, 25)), xp("400"), badge("Compounder")),
		define("growth-double", "Double Up", "Double the starting portfolio",
			CategoryGrowth, TierDiamond, RarityLegendary, 100,
			all(gte(stats.KindGrowth, 100)), xp("1500"), title("Doubler")),
		define("social-butterfly", "Social Butterfly", "Connect with 5 traders",
			CategorySocial, TierBronze, RarityCommon, 5,
			all(gte(stats.KindSocial, 5)), xp("50")),
		define("community-leader", "Community Leader", "Connect with 25 traders",
			CategorySocial, TierGold, RarityRare, 25,
			all(gte(stats.KindSocial, 25)), xp("300"), title("Leader")),
		define("daily-grinder", "Daily Grinder", "Log 5 trades in one day",
			CategoryDedication, TierSilver, RarityUncommon, 5,
			all(within(gte(stats.KindTrades, 5), stats.Daily)), xp("75")),
		define("monthly-marathon", "Monthly Marathon", "Trade on 20 different days within 30 days",
			CategoryDedication, TierGold, RarityRare, 20,
			all(within(gte(stats.KindTime, 20), stats.Monthly)), xp("350"), badge("Marathoner")),
	}
}

func window(from, to string) (time.Time, time.Time) {
	start, _ := time.Parse("2006-01-02", from)
	end, _ := time.Parse("2006-01-02", to)
	return start, end.Add(24*time.Hour - time.Nanosecond)
}

func challenge(def Definition, from, to string, active bool) Challenge {
	start, end := window(from, to)
	return Challenge{Definition: def, StartDate: start, EndDate: end, IsActive: active}
}

// Challenges returns the milestone challenges with their windows. EndDate is
// inclusive of the whole last day. Requirements on stats.Window only count
// trades dated inside the window.
func Challenges() []Challenge {
	return []Challenge{
		challenge(define("q3-2026-discipline-sprint", "Q3 Discipline Sprint", "20 trades at 90% compliance within 30 days during Q3",
			CategoryDiscipline, TierGold, RarityRare, 20,
			all(within(gte(stats.KindTrades, 20), stats.Monthly), within(gte(stats.KindCompliance, 90), stats.Monthly)),
			xp("400"), badge("Q3 Sprinter")),
			"2026-07-01", "2026-09-30", true),
		challenge(define("october-streak", "October Streak", "Reach a 7 trade compliant streak with trades dated in October",
			CategoryStreak, TierSilver, RarityUncommon, 7,
			all(within(gte(stats.KindStreak, 7), stats.Window)), xp("150")),
			"2026-10-01", "2026-10-31", true),
		challenge(define("q4-2026-growth-push", "Q4 Growth Push", "Grow the portfolio by 10% with trades dated in Q4",
			CategoryGrowth, TierGold, RarityRare, 10,
			all(within(gte(stats.KindGrowth, 10), stats.Window)), xp("500"), title("Closer")),
			"2026-10-01", "2026-12-31", true),
		challenge(define("holiday-journal", "Holiday Journal", "Trade on 5 days over the holidays",
			CategoryDedication, TierBronze, RarityCommon, 5,
			all(within(gte(stats.KindTime, 5), stats.Window)), xp("80")),
			"2026-12-15", "2027-01-05", false),
	}
}
