package advisor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProfileAliases(t *testing.T) {
	cases := []struct {
		age      string
		cond     string
		wantAge  AgeBand
		wantCond Condition
	}{
		{"영아", "천식", AgeInfant, ConditionAsthma},
		{"유아", "비염", AgeToddler, ConditionRhinitis},
		{"초등 저학년", "아토피", AgeElementaryLow, ConditionAtopy},
		{"초등 고학년", "없음", AgeElementaryHigh, ConditionGeneral},
		{"청소년", "healthy", AgeTeenAdult, ConditionGeneral},
		{"TEEN", "Asthma", AgeTeenAdult, ConditionAsthma},
		{"7-9", "알레르기 비염", AgeElementaryLow, ConditionRhinitis},
	}
	for _, tc := range cases {
		got := NormalizeProfile(tc.age, tc.cond)
		require.Equal(t, tc.wantAge, got.AgeBand, tc.age)
		require.Equal(t, tc.wantCond, got.Condition, tc.cond)
	}
}

func TestNormalizeProfileSubstringFallback(t *testing.T) {
	got := NormalizeProfile("초등학교 저학년", "아토피 피부염 심함")
	require.Equal(t, AgeElementaryLow, got.AgeBand)
	require.Equal(t, ConditionAtopy, got.Condition)
}

func TestNormalizeProfileDefaults(t *testing.T) {
	got := NormalizeProfile("", "")
	require.Equal(t, AgeElementaryHigh, got.AgeBand)
	require.Equal(t, ConditionGeneral, got.Condition)

	got = NormalizeProfile("외계인", "감기")
	require.Equal(t, AgeElementaryHigh, got.AgeBand)
	require.Equal(t, ConditionGeneral, got.Condition)
}
