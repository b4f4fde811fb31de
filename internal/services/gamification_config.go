package services

import "time"

// Action keys accepted by the award engine. Ledger entries store the
// lower-cased form.
const (
	ActionDailyLogin          = "DAILY_LOGIN"
	ActionArticleRead         = "ARTICLE_READ"
	ActionArticleReadFull     = "ARTICLE_READ_FULL"
	ActionArticleLike         = "ARTICLE_LIKE"
	ActionArticleShare        = "ARTICLE_SHARE"
	ActionCommentPost         = "COMMENT_POST"
	ActionCommentReceivedLike = "COMMENT_RECEIVED_LIKE"
	ActionReelWatch           = "REEL_WATCH"
	ActionReelShare           = "REEL_SHARE"
	ActionReferralSignup      = "REFERRAL_SIGNUP"
	ActionReferralActive      = "REFERRAL_ACTIVE"
	ActionProfileComplete     = "PROFILE_COMPLETE"

	// actionBadgeBonus only appears in ledger entries, never as an awardable
	// action key.
	actionBadgeBonus = "badge_bonus"
)

// LevelDefinition is one row of the ascending level table.
type LevelDefinition struct {
	Level          int    `json:"level"`
	PointsRequired int    `json:"pointsRequired"`
	Title          string `json:"title"`
	TitleLocal     string `json:"titleLocal"`
}

// RateLimitRule caps how often an action can be awarded.
type RateLimitRule struct {
	DailyLimit int
	Cooldown   time.Duration
}

// GamificationConfig is the immutable configuration value injected into the
// engine at construction. Nothing mutates it after startup.
type GamificationConfig struct {
	ActionPoints        map[string]int
	Levels              []LevelDefinition
	RateLimits          map[string]RateLimitRule
	DefaultDailyLimit   int
	StreakGraceHours    int
	MaxStreakMultiplier int
}

// DefaultGamificationConfig returns the production point values, level table
// and per-action limits.
func DefaultGamificationConfig() GamificationConfig {
	return GamificationConfig{
		ActionPoints: map[string]int{
			ActionDailyLogin:          10,
			ActionArticleRead:         5,
			ActionArticleReadFull:     10,
			ActionArticleLike:         2,
			ActionArticleShare:        5,
			ActionCommentPost:         3,
			ActionCommentReceivedLike: 1,
			ActionReelWatch:           2,
			ActionReelShare:           5,
			ActionReferralSignup:      50,
			ActionReferralActive:      100,
			ActionProfileComplete:     20,
		},
		Levels: []LevelDefinition{
			{Level: 1, PointsRequired: 0, Title: "Newcomer", TitleLocal: "नवागंतुक"},
			{Level: 2, PointsRequired: 100, Title: "Reader", TitleLocal: "पाठक"},
			{Level: 3, PointsRequired: 250, Title: "Regular", TitleLocal: "नियमित"},
			{Level: 4, PointsRequired: 500, Title: "Enthusiast", TitleLocal: "उत्साही"},
			{Level: 5, PointsRequired: 1000, Title: "Contributor", TitleLocal: "योगदानकर्ता"},
			{Level: 6, PointsRequired: 2000, Title: "Insider", TitleLocal: "विशेषज्ञ पाठक"},
			{Level: 7, PointsRequired: 3500, Title: "Analyst", TitleLocal: "विश्लेषक"},
			{Level: 8, PointsRequired: 5500, Title: "Authority", TitleLocal: "प्राधिकारी"},
			{Level: 9, PointsRequired: 8000, Title: "Veteran", TitleLocal: "अनुभवी"},
			{Level: 10, PointsRequired: 15000, Title: "Legend", TitleLocal: "महारथी"},
		},
		RateLimits: map[string]RateLimitRule{
			ActionDailyLogin:          {DailyLimit: 1, Cooldown: 0},
			ActionArticleRead:         {DailyLimit: 50, Cooldown: 30 * time.Second},
			ActionArticleReadFull:     {DailyLimit: 30, Cooldown: 60 * time.Second},
			ActionArticleLike:         {DailyLimit: 100, Cooldown: 0},
			ActionArticleShare:        {DailyLimit: 20, Cooldown: 30 * time.Second},
			ActionCommentPost:         {DailyLimit: 30, Cooldown: 15 * time.Second},
			ActionCommentReceivedLike: {DailyLimit: 200, Cooldown: 0},
			ActionReelWatch:           {DailyLimit: 100, Cooldown: 10 * time.Second},
			ActionReelShare:           {DailyLimit: 20, Cooldown: 30 * time.Second},
			ActionReferralSignup:      {DailyLimit: 10, Cooldown: 0},
			ActionReferralActive:      {DailyLimit: 10, Cooldown: 0},
			ActionProfileComplete:     {DailyLimit: 1, Cooldown: 0},
		},
		DefaultDailyLimit:   100,
		StreakGraceHours:    48,
		MaxStreakMultiplier: 7,
	}
}
