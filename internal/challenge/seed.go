package challenge

import (
	_ "embed"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"gopkg.in/yaml.v3"
	"log/slog"
)

//go:embed challenges.yaml
var seedYAML []byte

type seedFile struct {
	InitialWeek []models.DailyChallenge `yaml:"initial_week"`
	Pool        []models.DailyChallenge `yaml:"pool"`
}

// Seed returns the curated challenges shipped with the server.
func Seed() ([]models.ChallengeRecord, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed decodes challenges in the seed file format and validates them.
func ParseSeed(data []byte) ([]models.ChallengeRecord, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	records := make([]models.ChallengeRecord, 0, len(file.InitialWeek)+len(file.Pool))
	for _, c := range file.InitialWeek {
		if c.Day < 1 || c.Day > daysInInitialWeek {
			return nil, errors.New("initial week day out of range", slog.Int("day", c.Day))
		}
		records = append(records, toRecord(c, true))
	}
	for _, c := range file.Pool {
		records = append(records, toRecord(c, false))
	}
	for _, r := range records {
		if err := Validate(r); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Validate reports whether r can be stored.
func Validate(r models.ChallengeRecord) error {
	switch {
	case r.StartCharacter == "" || r.EndCharacter == "":
		return errors.New("challenge needs start and end characters", slog.Int("day", r.DayNumber))
	case r.StartCharacter == r.EndCharacter:
		return errors.New("start and end characters must differ", slog.String("character", r.StartCharacter))
	case !r.Difficulty.Valid():
		return errors.New("unknown difficulty", slog.String("difficulty", string(r.Difficulty)))
	case r.DayNumber < 1:
		return errors.New("day number must be positive", slog.Int("day", r.DayNumber))
	}
	return nil
}

func toRecord(c models.DailyChallenge, initialWeek bool) models.ChallengeRecord {
	return models.ChallengeRecord{
		ID:             0,
		DayNumber:      c.Day,
		StartCharacter: c.StartCharacter,
		EndCharacter:   c.EndCharacter,
		Description:    c.Description,
		Difficulty:     c.Difficulty,
		IsInitialWeek:  initialWeek,
	}
}
