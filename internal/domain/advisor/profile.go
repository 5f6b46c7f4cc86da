package advisor

import "strings"

// NormalizeProfile maps free-form age/condition input onto a total profile:
// every input resolves to exactly one band (default elementary_high) and any
// unrecognized condition collapses to general.
func NormalizeProfile(ageGroup, condition string) UserProfile {
	return UserProfile{
		AgeBand:   normalizeAgeBand(ageGroup),
		Condition: normalizeCondition(condition),
	}
}

var ageBandAliases = map[string]AgeBand{
	"infant": AgeInfant, "영아": AgeInfant, "0-2": AgeInfant, "0~2": AgeInfant,
	"toddler": AgeToddler, "유아": AgeToddler, "영유아": AgeToddler,
	"3-6": AgeToddler, "3~6": AgeToddler, "0-6": AgeToddler, "0~6": AgeToddler,
	"elementary_low": AgeElementaryLow, "초등 저학년": AgeElementaryLow, "초등저학년": AgeElementaryLow,
	"1-3": AgeElementaryLow, "1~3": AgeElementaryLow, "7-9": AgeElementaryLow, "7~9": AgeElementaryLow,
	"elementary_high": AgeElementaryHigh, "초등 고학년": AgeElementaryHigh, "초등고학년": AgeElementaryHigh,
	"4-6": AgeElementaryHigh, "4~6": AgeElementaryHigh, "10-12": AgeElementaryHigh, "10~12": AgeElementaryHigh,
	"teen": AgeTeenAdult, "teen_adult": AgeTeenAdult, "adult": AgeTeenAdult,
	"청소년": AgeTeenAdult, "중등": AgeTeenAdult, "고등": AgeTeenAdult,
	"중학생": AgeTeenAdult, "고등학생": AgeTeenAdult, "성인": AgeTeenAdult,
	"13-15": AgeTeenAdult, "13~15": AgeTeenAdult, "16-18": AgeTeenAdult, "16~18": AgeTeenAdult,
	"child": AgeElementaryHigh, "children": AgeElementaryHigh, "초등": AgeElementaryHigh, "아동": AgeElementaryHigh,
}

func normalizeAgeBand(input string) AgeBand {
	raw := strings.ToLower(strings.TrimSpace(input))
	if raw == "" {
		return AgeElementaryHigh
	}
	if band, ok := ageBandAliases[raw]; ok {
		return band
	}
	// Substring fallbacks for compound Korean inputs ("초등학교 저학년" 등).
	switch {
	case strings.Contains(raw, "영아"):
		return AgeInfant
	case strings.Contains(raw, "유아"):
		return AgeToddler
	case strings.Contains(raw, "저학년"):
		return AgeElementaryLow
	case strings.Contains(raw, "고학년"), strings.Contains(raw, "초등"), strings.Contains(raw, "아동"):
		return AgeElementaryHigh
	case strings.Contains(raw, "중등"), strings.Contains(raw, "고등"), strings.Contains(raw, "청소년"), strings.Contains(raw, "성인"):
		return AgeTeenAdult
	}
	return AgeElementaryHigh
}

var conditionAliases = map[string]Condition{
	"general": ConditionGeneral, "none": ConditionGeneral, "healthy": ConditionGeneral,
	"건강": ConditionGeneral, "건강함": ConditionGeneral, "없음": ConditionGeneral,
	"rhinitis": ConditionRhinitis, "비염": ConditionRhinitis, "알레르기비염": ConditionRhinitis, "알레르기 비염": ConditionRhinitis,
	"asthma": ConditionAsthma, "천식": ConditionAsthma,
	"atopy": ConditionAtopy, "atopic": ConditionAtopy, "아토피": ConditionAtopy, "아토피피부염": ConditionAtopy,
}

func normalizeCondition(input string) Condition {
	raw := strings.ToLower(strings.TrimSpace(input))
	if raw == "" {
		return ConditionGeneral
	}
	if cond, ok := conditionAliases[raw]; ok {
		return cond
	}
	switch {
	case strings.Contains(raw, "비염"):
		return ConditionRhinitis
	case strings.Contains(raw, "천식"):
		return ConditionAsthma
	case strings.Contains(raw, "아토피"):
		return ConditionAtopy
	}
	return ConditionGeneral
}
