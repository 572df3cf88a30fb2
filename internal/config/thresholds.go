package config

import "fmt"

// AgentThresholds carries every detector's rule constants. A rule fires only
// when all of its conditions hold, so these are the complete tunable surface
// of the agent roster.
type AgentThresholds struct {
	EPA      EPAThresholds      `yaml:"epa"`
	Pressure PressureThresholds `yaml:"pressure"`
	QB       QBThresholds       `yaml:"qb"`
	Weather  WeatherThresholds  `yaml:"weather"`
	Volume   VolumeThresholds   `yaml:"volume"`
	Pace     PaceThresholds     `yaml:"pace"`
	Redzone  RedzoneThresholds  `yaml:"redzone"`
	Injury   InjuryThresholds   `yaml:"injury"`
}

// EPAThresholds gates the receiving-efficiency mismatch rule.
type EPAThresholds struct {
	ReceivingRankMax  int `yaml:"receiving_rank_max"`   // subject receiving EPA rank must be <= this
	OppAllowedRankMax int `yaml:"opp_allowed_rank_max"` // opponent EPA-allowed rank must be <= this
	MinSamplePlays    int `yaml:"min_sample_plays"`
}

// PressureThresholds gates the pass-rush vs protection mismatch rule.
type PressureThresholds struct {
	PressureRankMax     int `yaml:"pressure_rank_max"`      // defense pressure-rate rank
	PassBlockWinRankMin int `yaml:"pass_block_win_rank_min"` // offense pass-block win rank must be >= this (bad protection)
	MinSamplePlays      int `yaml:"min_sample_plays"`
}

// QBThresholds gates the quarterback efficiency rule.
type QBThresholds struct {
	PassingRankMax    int `yaml:"passing_rank_max"`
	OppAllowedRankMax int `yaml:"opp_allowed_rank_max"`
	MinSamplePlays    int `yaml:"min_sample_plays"`
}

// WeatherThresholds gates the game-environment rule.
type WeatherThresholds struct {
	WindMPHMin      float64 `yaml:"wind_mph_min"`
	PrecipPctMin    float64 `yaml:"precip_pct_min"`
	TemperatureFMax float64 `yaml:"temperature_f_max"`
}

// VolumeThresholds gates the usage-share rule.
type VolumeThresholds struct {
	TargetShareMin float64 `yaml:"target_share_min"`
	OppRankMax     int     `yaml:"opp_rank_max"`
	MinGames       int     `yaml:"min_games"`
}

// PaceThresholds gates the combined-pace rule.
type PaceThresholds struct {
	PaceRankMax    int `yaml:"pace_rank_max"` // both teams must rank at or above this pace
	MinSamplePlays int `yaml:"min_sample_plays"`
}

// RedzoneThresholds gates the scoring-opportunity rule.
type RedzoneThresholds struct {
	TouchesPerGameMin   float64 `yaml:"touches_per_game_min"`
	OppTDRateAllowedMin float64 `yaml:"opp_td_rate_allowed_min"`
	MinGames            int     `yaml:"min_games"`
}

// InjuryThresholds gates the vacated-opportunity rule.
type InjuryThresholds struct {
	VacatedShareMin float64 `yaml:"vacated_share_min"`
	TargetShareMin  float64 `yaml:"target_share_min"`
	MinGames        int     `yaml:"min_games"`
}

// DefaultAgentThresholds returns the historical rule constants.
func DefaultAgentThresholds() AgentThresholds {
	return AgentThresholds{
		EPA:      EPAThresholds{ReceivingRankMax: 5, OppAllowedRankMax: 10, MinSamplePlays: 100},
		Pressure: PressureThresholds{PressureRankMax: 8, PassBlockWinRankMin: 20, MinSamplePlays: 80},
		QB:       QBThresholds{PassingRankMax: 8, OppAllowedRankMax: 10, MinSamplePlays: 100},
		Weather:  WeatherThresholds{WindMPHMin: 15, PrecipPctMin: 60, TemperatureFMax: 20},
		Volume:   VolumeThresholds{TargetShareMin: 0.24, OppRankMax: 12, MinGames: 4},
		Pace:     PaceThresholds{PaceRankMax: 10, MinSamplePlays: 100},
		Redzone:  RedzoneThresholds{TouchesPerGameMin: 2.5, OppTDRateAllowedMin: 0.60, MinGames: 4},
		Injury:   InjuryThresholds{VacatedShareMin: 0.18, TargetShareMin: 0.15, MinGames: 3},
	}
}

// Validate checks that the thresholds are sane.
func (a AgentThresholds) Validate() error {
	if a.EPA.ReceivingRankMax < 1 || a.EPA.OppAllowedRankMax < 1 {
		return fmt.Errorf("agents.epa ranks must be >= 1")
	}
	if a.EPA.MinSamplePlays < 1 || a.Pressure.MinSamplePlays < 1 || a.QB.MinSamplePlays < 1 || a.Pace.MinSamplePlays < 1 {
		return fmt.Errorf("agents.*.min_sample_plays must be >= 1")
	}
	if a.Volume.TargetShareMin <= 0 || a.Volume.TargetShareMin >= 1 {
		return fmt.Errorf("agents.volume.target_share_min must be in (0,1)")
	}
	if a.Injury.VacatedShareMin <= 0 || a.Injury.VacatedShareMin >= 1 {
		return fmt.Errorf("agents.injury.vacated_share_min must be in (0,1)")
	}
	if a.Weather.WindMPHMin < 0 || a.Weather.PrecipPctMin < 0 {
		return fmt.Errorf("agents.weather thresholds must be >= 0")
	}
	return nil
}
