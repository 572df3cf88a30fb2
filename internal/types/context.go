package types

import "time"

// PlayerStats holds the per-player metrics detectors evaluate. Optional
// metrics are pointers; a nil metric means the condition that reads it is
// simply not satisfied, never an error.
type PlayerStats struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`

	GamesPlayed *int `json:"games_played,omitempty"`
	PlaysSample *int `json:"plays_sample,omitempty"`

	ReceivingEPARank *int     `json:"receiving_epa_rank,omitempty"`
	TargetShare      *float64 `json:"target_share,omitempty"`
	TargetsPerGame   *float64 `json:"targets_per_game,omitempty"`
	RushAttemptsPG   *float64 `json:"rush_attempts_per_game,omitempty"`
	RedzoneTouches   *float64 `json:"redzone_touches_per_game,omitempty"`
	YardsPerRoute    *float64 `json:"yards_per_route,omitempty"`

	PassingEPARank    *int     `json:"passing_epa_rank,omitempty"`
	PressureToSackPct *float64 `json:"pressure_to_sack_pct,omitempty"`
	TimeToThrow       *float64 `json:"time_to_throw,omitempty"`
	DeepAttemptRate   *float64 `json:"deep_attempt_rate,omitempty"`
}

// TeamStats holds the per-team metrics detectors evaluate, including the
// opponent-vulnerability ranks that gate most rules.
type TeamStats struct {
	Team string `json:"team"`

	PlaysSample *int `json:"plays_sample,omitempty"`

	PassDefenseEPARank   *int     `json:"pass_defense_epa_rank,omitempty"`
	EPAAllowedToWRRank   *int     `json:"epa_allowed_to_wr_rank,omitempty"`
	EPAAllowedToRBRank   *int     `json:"epa_allowed_to_rb_rank,omitempty"`
	EPAAllowedToTERank   *int     `json:"epa_allowed_to_te_rank,omitempty"`
	PressureRateRank     *int     `json:"pressure_rate_rank,omitempty"`
	PassBlockWinRank     *int     `json:"pass_block_win_rank,omitempty"`
	SackRateAllowed      *float64 `json:"sack_rate_allowed,omitempty"`
	SecondsPerPlay       *float64 `json:"seconds_per_play,omitempty"`
	PaceRank             *int     `json:"pace_rank,omitempty"`
	RedzoneTDRateAllowed *float64 `json:"redzone_td_rate_allowed,omitempty"`
	RushDefenseRank      *int     `json:"rush_defense_rank,omitempty"`
	TargetShareVacated   *float64 `json:"target_share_vacated,omitempty"`
}

// Weather is the game-environment slice of the context.
type Weather struct {
	WindMPH          *float64 `json:"wind_mph,omitempty"`
	TemperatureF     *float64 `json:"temperature_f,omitempty"`
	PrecipitationPct *float64 `json:"precipitation_pct,omitempty"`
	Dome             bool     `json:"dome"`
}

// CuratedNotes is the optional analyst-maintained context sheet.
type CuratedNotes struct {
	Injuries         []string `json:"injuries,omitempty"`
	Analytics        []string `json:"analytics,omitempty"`
	SuggestedParlays []string `json:"suggested_parlays,omitempty"`
}

// MatchupContext is the full statistical context one request analyzes. It is
// produced by the data-loading collaborator and treated as read-only here.
type MatchupContext struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	Players map[string]PlayerStats `json:"players"`
	Teams   map[string]TeamStats   `json:"teams"`
	Weather *Weather               `json:"weather,omitempty"`
	Lines   []LineInfo             `json:"lines,omitempty"`
	Notes   *CuratedNotes          `json:"notes,omitempty"`

	DataTimestamp time.Time `json:"data_timestamp"`
	DataVersion   string    `json:"data_version"`
}

// Opponent returns the team a player's opponent stats should be read from.
func (m *MatchupContext) Opponent(team string) (TeamStats, bool) {
	var other string
	switch team {
	case m.HomeTeam:
		other = m.AwayTeam
	case m.AwayTeam:
		other = m.HomeTeam
	default:
		return TeamStats{}, false
	}
	ts, ok := m.Teams[other]
	return ts, ok
}

// AnalysisResponse is everything the core hands back to the serving layer
// for one request.
type AnalysisResponse struct {
	RequestID    string             `json:"request_id"`
	Matchup      string             `json:"matchup"`
	DataVersion  string             `json:"data_version"`
	Findings     []Finding          `json:"findings"`
	Alerts       []Alert            `json:"alerts"`
	Rejections   []Rejection        `json:"rejections"`
	Correlations []CorrelationGroup `json:"correlations"`
	Scripts      []Script           `json:"scripts"`
	Ladder       *Ladder            `json:"ladder,omitempty"`
	Provenance   Provenance         `json:"provenance"`
}

// Rejection records one alert's validation failure inside a batch. The error
// text carries the taxonomy code from the validate package.
type Rejection struct {
	AlertID string `json:"alert_id"`
	Error   string `json:"error"`
}
