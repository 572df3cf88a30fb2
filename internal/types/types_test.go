package types

import "testing"

func TestClaimPartsRender(t *testing.T) {
	cases := []struct {
		name string
		in   ClaimParts
		want string
	}{
		{
			"with context",
			ClaimParts{Subject: "T. Rivers", Assertion: "profiles for a heavy receptions day", Context: "soft zone coverage"},
			"T. Rivers profiles for a heavy receptions day (soft zone coverage)",
		},
		{
			"without context",
			ClaimParts{Subject: "T. Rivers", Assertion: "profiles for a heavy receptions day"},
			"T. Rivers profiles for a heavy receptions day",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Render(); got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMatchupContextOpponent(t *testing.T) {
	mc := &MatchupContext{
		HomeTeam: "HOU",
		AwayTeam: "JAX",
		Teams: map[string]TeamStats{
			"HOU": {Team: "HOU"},
			"JAX": {Team: "JAX"},
		},
	}

	opp, ok := mc.Opponent("HOU")
	if !ok || opp.Team != "JAX" {
		t.Errorf("Opponent(HOU) = %+v, %v", opp, ok)
	}
	opp, ok = mc.Opponent("JAX")
	if !ok || opp.Team != "HOU" {
		t.Errorf("Opponent(JAX) = %+v, %v", opp, ok)
	}
	if _, ok := mc.Opponent("DAL"); ok {
		t.Error("Opponent(DAL) should not resolve")
	}
}
