package models

import "time"

// User is a passkey-authenticated player with cumulative statistics.
type User struct {
	ID               []byte  `db:"id"                 json:"-"`
	DisplayName      string  `db:"display_name"       json:"displayName"`
	TotalGamesPlayed int     `db:"total_games_played" json:"totalGamesPlayed"`
	TotalWins        int     `db:"total_wins"         json:"totalWins"`
	BestScore        *int    `db:"best_score"         json:"bestScore"`
	CurrentStreak    int     `db:"current_streak"     json:"currentStreak"`
	LongestStreak    int     `db:"longest_streak"     json:"longestStreak"`
	LastPlayedDate   *string `db:"last_played_date"   json:"lastPlayedDate"`
	CreatedAt        string  `db:"created_at"         json:"createdAt"`
	UpdatedAt        string  `db:"updated_at"         json:"updatedAt"`
}

// GameRecord is a persisted game session.
type GameRecord struct {
	ID               string     `db:"id"                 json:"id"`
	UserID           []byte     `db:"user_id"            json:"-"`
	ChallengeDay     int        `db:"challenge_day"      json:"challengeDay"`
	StartCharacter   string     `db:"start_character"    json:"startCharacter"`
	EndCharacter     string     `db:"end_character"      json:"endCharacter"`
	Difficulty       Difficulty `db:"difficulty"         json:"difficulty"`
	Completed        bool       `db:"completed"          json:"completed"`
	Won              bool       `db:"won"                json:"won"`
	StepsTaken       *int       `db:"steps_taken"        json:"stepsTaken"`
	TimeTakenSeconds *int       `db:"time_taken_seconds" json:"timeTakenSeconds"`
	ConnectionPath   *string    `db:"connection_path"    json:"-"`
	StartedAt        string     `db:"started_at"         json:"startedAt"`
	CompletedAt      *string    `db:"completed_at"       json:"completedAt"`
}

// Completion is what a finished game reports when its persisted session is closed.
type Completion struct {
	Won     bool
	Steps   int
	Elapsed time.Duration
	Path    []PathSegment
}

// AchievementType identifies an achievement. Each user unlocks each type at most once.
type AchievementType string

const (
	AchievementFirstWin     AchievementType = "first-win"
	AchievementSpeedRunner  AchievementType = "speed-runner"
	AchievementPerfectScore AchievementType = "perfect-score"
)

type Achievement struct {
	UserID          []byte          `db:"user_id"          json:"-"`
	AchievementType AchievementType `db:"achievement_type" json:"type"`
	ChallengeDay    int             `db:"challenge_day"    json:"challengeDay"`
	UnlockedAt      string          `db:"unlocked_at"      json:"unlockedAt"`
}

// LeaderboardEntry is one ranked result of a challenge day.
type LeaderboardEntry struct {
	UserID           []byte     `db:"user_id"            json:"-"`
	DisplayName      string     `db:"display_name"       json:"displayName"`
	ChallengeDay     int        `db:"challenge_day"      json:"challengeDay"`
	Difficulty       Difficulty `db:"difficulty"         json:"difficulty"`
	StepsTaken       int        `db:"steps_taken"        json:"stepsTaken"`
	TimeTakenSeconds int        `db:"time_taken_seconds" json:"timeTakenSeconds"`
	CreatedAt        string     `db:"created_at"         json:"createdAt"`
}
