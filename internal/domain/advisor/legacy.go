package advisor

import "github.com/epilog/epilog-api/internal/domain/airquality"

// legacyLevel is the reduced 3-level key the pre-expansion table used:
// bad and very bad collapse to warning.
type legacyLevel string

const (
	legacyOK      legacyLevel = "ok"
	legacyCaution legacyLevel = "caution"
	legacyWarning legacyLevel = "warning"
)

func collapseGrade(grade airquality.Grade) legacyLevel {
	switch grade {
	case airquality.GradeGood:
		return legacyOK
	case airquality.GradeModerate:
		return legacyCaution
	default:
		return legacyWarning
	}
}

// legacyAge folds the five bands onto the four the reduced table predates:
// the toddler band reuses the infant column, teen_adult the teen column.
func legacyAge(band AgeBand) AgeBand {
	if band == AgeToddler {
		return AgeInfant
	}
	return band
}

type legacyCell struct {
	headline string
	actions  []string
}

var legacyTable = map[AgeBand]map[legacyLevel]legacyCell{
	AgeInfant: {
		legacyOK: {
			headline: "오늘은 바깥놀이 괜찮아요 🙂",
			actions: []string{
				"가까운 공원에서 가볍게 뛰어놀기",
				"물 자주 마시기",
				"집에 오면 손·얼굴 씻기",
			},
		},
		legacyCaution: {
			headline: "오늘은 짧게 다녀와요!",
			actions: []string{
				"외출은 20–30분 이내로 짧게",
				"뛰는 놀이는 잠깐만",
				"집에서는 블록/역할놀이로 바꿔보기",
			},
		},
		legacyWarning: {
			headline: "오늘은 실내가 더 편해요 🏠",
			actions: []string{
				"외출 대신 장난감 정리+찾기 게임",
				"실내에서 풍선배구/장애물 코스(가볍게)",
				"환기는 짧게(5–10분) 하고 바로 닫기",
			},
		},
	},
	AgeElementaryLow: {
		legacyOK: {
			headline: "오늘은 밖에서 놀기 좋아요! 물은 꼭 챙기기!",
			actions: []string{
				"가벼운 달리기/자전거",
				"물 자주 마시기",
				"귀가 후 손씻기/세안",
			},
		},
		legacyCaution: {
			headline: "오늘은 잠깐만 다녀와요. 땀나는 놀이는 쉬기!",
			actions: []string{
				"땀 많이 나는 놀이는 잠깐만",
				"외출은 30분 이내",
				"실내에서는 만들기/보드게임 추천",
			},
		},
		legacyWarning: {
			headline: "오늘은 실내 놀이가 더 좋아요!",
			actions: []string{
				"밖 대신 실내 놀이(보드게임/만들기)",
				"창문 환기는 짧게",
				"기침/쌕쌕이면 쉬기",
			},
		},
	},
	AgeElementaryHigh: {
		legacyOK: {
			headline: "오늘은 야외활동 괜찮아요. 물 자주 마셔요!",
			actions: []string{
				"가벼운 운동이나 산책",
				"마스크/손씻기(필요 시)",
				"귀가 후 샤워/세안",
			},
		},
		legacyCaution: {
			headline: "오늘은 야외 활동은 가능하지만 강도는 낮게!",
			actions: []string{
				"체육/뛰기 대신 산책·자전거 천천히",
				"시간은 짧게(30–60분)",
				"실내에서는 독서/보드게임/만들기",
			},
		},
		legacyWarning: {
			headline: "오늘은 실내 활동이 안전해요.",
			actions: []string{
				"야외 활동 대신 실내 활동",
				"창문 환기는 짧게",
				"호흡기 증상 있으면 무리하지 않기",
			},
		},
	},
	AgeTeenAdult: {
		legacyOK: {
			headline: "오늘은 야외 활동 무리 없어요. 수분 섭취 잊지 마세요.",
			actions: []string{
				"가벼운 운동이나 산책",
				"마스크/손씻기(필요 시)",
				"귀가 후 샤워/세안",
			},
		},
		legacyCaution: {
			headline: "오늘은 야외 운동 강도는 낮추고 시간은 짧게!",
			actions: []string{
				"격한 운동은 피하고 강도 낮추기",
				"외출 시간은 짧게(30–60분)",
				"실내에서는 스트레칭/가벼운 운동 추천",
			},
		},
		legacyWarning: {
			headline: "오늘은 실내 활동이 더 안전합니다.",
			actions: []string{
				"야외 활동 대신 실내 운동",
				"창문 환기는 짧게",
				"호흡기 증상 있으면 무리하지 않기",
			},
		},
	},
}

func legacyLookup(band AgeBand, grade airquality.Grade) (DecisionEntry, bool) {
	levels, ok := legacyTable[legacyAge(band)]
	if !ok {
		return DecisionEntry{}, false
	}
	cell, ok := levels[collapseGrade(grade)]
	if !ok {
		return DecisionEntry{}, false
	}
	return DecisionEntry{
		AgeBand:     band,
		Grade:       grade,
		GradeLabel:  grade.String(),
		Headline:    cell.headline,
		Rationale:   "",
		ActionItems: append([]string(nil), cell.actions...),
	}, true
}
