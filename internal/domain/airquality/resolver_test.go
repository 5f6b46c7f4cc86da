package airquality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveStationCandidateOrder(t *testing.T) {
	res := ResolveStation("서울특별시 강남구 역삼동")

	require.Equal(t, []string{
		"서울특별시 강남구 역삼동",
		"서울특별시강남구역삼동",
		"역삼동",
		"강남구",
		"강남구 역삼동",
	}, res.Candidates)
	require.Equal(t, "서울", res.Region)
	require.True(t, res.RegionExplicit)
}

func TestResolveStationNumberedDong(t *testing.T) {
	res := ResolveStation("전주시 서신1동")

	require.Contains(t, res.Candidates, "서신1동")
	require.Contains(t, res.Candidates, "서신동")
	require.False(t, res.RegionExplicit)
}

func TestResolveStationCollapsesWhitespace(t *testing.T) {
	res := ResolveStation("  부산광역시   해운대구 ")
	require.Equal(t, "부산광역시 해운대구", res.Query)
	require.Equal(t, "부산", res.Region)
	require.True(t, res.RegionExplicit)
}

func TestResolveStationEmptyQuery(t *testing.T) {
	res := ResolveStation("   ")
	require.Empty(t, res.Candidates)
}

func TestResolveStationSingleToken(t *testing.T) {
	res := ResolveStation("역삼동")
	require.Equal(t, []string{"역삼동"}, res.Candidates)
	require.False(t, res.RegionExplicit)
	require.Empty(t, res.Region)
}

func TestAcceptsRegion(t *testing.T) {
	explicit := Resolution{Region: "서울", RegionExplicit: true}
	require.True(t, explicit.AcceptsRegion("서울특별시"))
	require.True(t, explicit.AcceptsRegion(""))
	require.False(t, explicit.AcceptsRegion("부산"))

	inferred := Resolution{Region: "서울"}
	require.True(t, inferred.AcceptsRegion("부산"))
}
