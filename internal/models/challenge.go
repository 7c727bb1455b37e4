package models

// Difficulty is the advertised difficulty of a daily challenge.
type Difficulty string

const (
	DifficultyEasy       Difficulty = "Easy"
	DifficultyMedium     Difficulty = "Medium"
	DifficultyMediumHard Difficulty = "Medium-Hard"
	DifficultyHard       Difficulty = "Hard"
	DifficultyVeryHard   Difficulty = "Very Hard"
	DifficultyUltraHard  Difficulty = "Ultra Hard"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{ //nolint:gochecknoglobals // constant list
	DifficultyEasy,
	DifficultyMedium,
	DifficultyMediumHard,
	DifficultyHard,
	DifficultyVeryHard,
	DifficultyUltraHard,
}

func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Description is the blurb shown next to the difficulty badge.
func (d Difficulty) Description() string {
	switch d {
	case DifficultyEasy:
		return "Perfect for beginners - these characters have clear connections"
	case DifficultyMedium:
		return "A moderate challenge - requires some Marvel knowledge"
	case DifficultyMediumHard:
		return "Getting tricky - deeper comic connections needed"
	case DifficultyHard:
		return "Challenging - obscure connections may be required"
	case DifficultyVeryHard:
		return "Expert level - extensive Marvel knowledge needed"
	case DifficultyUltraHard:
		return "Master level - only the most dedicated fans will succeed"
	default:
		return "Test your Marvel knowledge"
	}
}

// DailyChallenge is the puzzle of one calendar day.
type DailyChallenge struct {
	Day            int        `json:"day"            yaml:"day"`
	StartCharacter string     `json:"startCharacter" yaml:"start"`
	EndCharacter   string     `json:"endCharacter"   yaml:"end"`
	Description    string     `json:"description"    yaml:"description"`
	Difficulty     Difficulty `json:"difficulty"     yaml:"difficulty"`
}

// ChallengeRecord is the stored form of a challenge. Initial-week records are served on days 1-7 after the epoch;
// the rest form the rotating pool.
type ChallengeRecord struct {
	ID             int64      `db:"id"`
	DayNumber      int        `db:"day_number"`
	StartCharacter string     `db:"start_character"`
	EndCharacter   string     `db:"end_character"`
	Description    string     `db:"description"`
	Difficulty     Difficulty `db:"difficulty"`
	IsInitialWeek  bool       `db:"is_initial_week"`
}

// Challenge converts the record into the challenge reported for the given day.
func (r ChallengeRecord) Challenge(day int) DailyChallenge {
	return DailyChallenge{
		Day:            day,
		StartCharacter: r.StartCharacter,
		EndCharacter:   r.EndCharacter,
		Description:    r.Description,
		Difficulty:     r.Difficulty,
	}
}
