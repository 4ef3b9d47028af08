package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy     DifficultyPreset = "easy"
	DifficultyNormal   DifficultyPreset = "normal"
	DifficultyHard     DifficultyPreset = "hard"
	DifficultyMarathon DifficultyPreset = "marathon"
)

// Presets lists the difficulty presets in menu order.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyMarathon}

// ParseDifficulty converts a string to DifficultyPreset.
// Returns DifficultyNormal and false for unknown values.
func ParseDifficulty(s string) (DifficultyPreset, bool) {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyMarathon:
		return DifficultyPreset(s), true
	default:
		return DifficultyNormal, false
	}
}

// Description returns a short human-readable summary of the preset.
func (p DifficultyPreset) Description() string {
	switch p {
	case DifficultyEasy:
		return "3 blocks, lazy spinners"
	case DifficultyNormal:
		return "5 blocks"
	case DifficultyHard:
		return "10 blocks, fast spinners"
	case DifficultyMarathon:
		return "20 blocks"
	default:
		return ""
	}
}

// BlocksForPreset returns the obstacle block count of a difficulty preset.
// Unknown presets return 0, meaning "keep the configured count".
func BlocksForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 3
	case DifficultyNormal:
		return 5
	case DifficultyHard:
		return 10
	case DifficultyMarathon:
		return 20
	default:
		return 0
	}
}

// SpinnerScaleForPreset returns the spinner speed multiplier of a preset.
func SpinnerScaleForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.75
	case DifficultyHard:
		return 1.5
	case DifficultyMarathon:
		return 1.25
	default:
		return 1.0
	}
}

// ApplyMarblePreset modifies the config based on a difficulty preset.
func ApplyMarblePreset(cfg *MarbleConfig, preset DifficultyPreset) {
	if n := BlocksForPreset(preset); n > 0 {
		cfg.Level.Blocks = n
	}
	scale := SpinnerScaleForPreset(preset)
	cfg.Obstacles.Spinner.MinSpeed *= scale
	cfg.Obstacles.Spinner.MaxSpeed *= scale
}
