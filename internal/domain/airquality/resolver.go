package airquality

import (
	"regexp"
	"strings"
)

// regionAliases maps administrative spellings to the canonical short form
// used by the telemetry feeds.
var regionAliases = map[string]string{
	"서울": "서울", "서울시": "서울", "서울특별시": "서울",
	"부산": "부산", "부산시": "부산", "부산광역시": "부산",
	"대구": "대구", "대구광역시": "대구",
	"인천": "인천", "인천광역시": "인천",
	"광주": "광주", "광주광역시": "광주",
	"대전": "대전", "대전광역시": "대전",
	"울산": "울산", "울산광역시": "울산",
	"세종": "세종", "세종시": "세종", "세종특별자치시": "세종",
	"경기": "경기", "경기도": "경기",
	"강원": "강원", "강원도": "강원", "강원특별자치도": "강원",
	"충북": "충북", "충청북도": "충북",
	"충남": "충남", "충청남도": "충남",
	"전북": "전북", "전라북도": "전북", "전북특별자치도": "전북",
	"전남": "전남", "전라남도": "전남",
	"경북": "경북", "경상북도": "경북",
	"경남": "경남", "경상남도": "경남",
	"제주": "제주", "제주도": "제주", "제주특별자치도": "제주",
}

// numberedDong matches neighborhood names with a numeric suffix, e.g. 저제1동.
var numberedDong = regexp.MustCompile(`^(.+?)([0-9]+)(동)$`)

// Resolution is the outcome of normalizing a free-text location query.
type Resolution struct {
	Query          string
	Candidates     []string
	Region         string
	RegionExplicit bool
}

// AcceptsRegion reports whether a row from the given region may satisfy this
// resolution. When the query explicitly named a region, rows outside it must
// be rejected rather than silently substituted.
func (r Resolution) AcceptsRegion(region string) bool {
	if !r.RegionExplicit {
		return true
	}
	canonical, ok := regionAliases[strings.TrimSpace(region)]
	if !ok {
		canonical = strings.TrimSpace(region)
	}
	return canonical == "" || canonical == r.Region
}

// ResolveStation normalizes a location query into an ordered, de-duplicated
// candidate list, most specific first. Pure function over the query and the
// alias table.
func ResolveStation(query string) Resolution {
	cleaned := strings.Join(strings.Fields(query), " ")
	res := Resolution{Query: cleaned}
	if cleaned == "" {
		return res
	}

	tokens := strings.Fields(cleaned)
	if canonical, ok := regionAliases[tokens[0]]; ok {
		res.Region = canonical
		res.RegionExplicit = true
	}

	var candidates []string
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" {
			return
		}
		for _, existing := range candidates {
			if existing == c {
				return
			}
		}
		candidates = append(candidates, c)
	}

	add(cleaned)
	add(strings.ReplaceAll(cleaned, " ", ""))

	last := tokens[len(tokens)-1]
	add(last)
	if len(tokens) >= 2 {
		add(tokens[len(tokens)-2])
		add(tokens[len(tokens)-2] + " " + last)
	}

	if m := numberedDong.FindStringSubmatch(last); m != nil {
		add(last)
		add(m[1] + m[3])
	}

	res.Candidates = candidates
	return res
}
