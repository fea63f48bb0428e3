package normalize

import (
	"strings"
	"sync"
)

// prefectureShort maps the 2-char short form to the official name.
var prefectureShort = map[string]string{
	"北海": "北海道", "青森": "青森県", "岩手": "岩手県",
	"宮城": "宮城県", "秋田": "秋田県", "山形": "山形県",
	"福島": "福島県", "茨城": "茨城県", "栃木": "栃木県",
	"群馬": "群馬県", "埼玉": "埼玉県", "千葉": "千葉県",
	"東京": "東京都", "神奈": "神奈川県", "新潟": "新潟県",
	"富山": "富山県", "石川": "石川県", "福井": "福井県",
	"山梨": "山梨県", "長野": "長野県", "岐阜": "岐阜県",
	"静岡": "静岡県", "愛知": "愛知県", "三重": "三重県",
	"滋賀": "滋賀県", "京都": "京都府", "大阪": "大阪府",
	"兵庫": "兵庫県", "奈良": "奈良県", "和歌": "和歌山県",
	"鳥取": "鳥取県", "島根": "島根県", "岡山": "岡山県",
	"広島": "広島県", "山口": "山口県", "徳島": "徳島県",
	"香川": "香川県", "愛媛": "愛媛県", "高知": "高知県",
	"福岡": "福岡県", "佐賀": "佐賀県", "長崎": "長崎県",
	"熊本": "熊本県", "大分": "大分県", "宮崎": "宮崎県",
	"鹿児": "鹿児島県", "沖縄": "沖縄県",
}

// Areas is the fixed 8-region enum.
var Areas = []string{"北海道", "東北", "関東", "中部", "関西", "中国", "四国", "九州"}

var (
	areaOnce        sync.Once
	todofukenToArea map[string]string
	officialPrefs   map[string]struct{}
)

func areaTables() (map[string]string, map[string]struct{}) {
	areaOnce.Do(func() {
		byArea := map[string][]string{
			"北海道": {"北海道"},
			"東北":  {"青森", "岩手", "宮城", "秋田", "山形", "福島"},
			"関東":  {"茨城", "栃木", "群馬", "埼玉", "千葉", "東京", "神奈川"},
			"中部":  {"新潟", "富山", "石川", "福井", "山梨", "長野", "岐阜", "静岡", "愛知", "三重"},
			"関西":  {"滋賀", "京都", "大阪", "兵庫", "奈良", "和歌山"},
			"中国":  {"鳥取", "島根", "岡山", "広島", "山口"},
			"四国":  {"徳島", "香川", "愛媛", "高知"},
			"九州":  {"福岡", "佐賀", "長崎", "熊本", "大分", "宮崎", "鹿児島", "沖縄"},
		}
		suffixes := map[string]string{
			"東京": "都", "京都": "府", "大阪": "府", "北海道": "",
		}
		todofukenToArea = make(map[string]string)
		for area, prefs := range byArea {
			for _, p := range prefs {
				todofukenToArea[p] = area
				suffix, ok := suffixes[p]
				if !ok {
					suffix = "県"
				}
				todofukenToArea[p+suffix] = area
			}
		}

		officialPrefs = make(map[string]struct{}, len(prefectureShort))
		for _, official := range prefectureShort {
			officialPrefs[official] = struct{}{}
		}
	})
	return todofukenToArea, officialPrefs
}

// CorrectTodofuken maps short forms and partial matches to the official
// prefecture name. Returns "" when nothing matches.
func CorrectTodofuken(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	_, official := areaTables()
	if _, ok := official[trimmed]; ok {
		return trimmed
	}

	for key, value := range prefectureShort {
		if trimmed == key || strings.HasPrefix(trimmed, key) {
			return value
		}
	}

	runes := []rune(trimmed)
	if len(runes) >= 2 {
		if value, ok := prefectureShort[string(runes[:2])]; ok {
			return value
		}
	}

	return ""
}

// CorrectWorkArea maps an area label (or a prefecture, or a legacy label
// like 首都圏) to one of the 8 canonical areas. Remote/nationwide/不問
// inputs yield "".
func CorrectWorkArea(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	for _, area := range Areas {
		if trimmed == area {
			return area
		}
	}

	switch trimmed {
	case "北海道・東北":
		return "北海道"
	case "甲信越", "北陸", "東海", "甲信越・北陸":
		return "中部"
	case "近畿":
		return "関西"
	case "中国・四国":
		return "中国"
	case "九州・沖縄":
		return "九州"
	case "首都圏":
		return "関東"
	}

	prefArea, _ := areaTables()
	if area, ok := prefArea[trimmed]; ok {
		return area
	}

	for _, area := range Areas {
		if strings.Contains(trimmed, area) {
			return area
		}
	}

	for pref, area := range prefArea {
		if strings.Contains(trimmed, pref) {
			return area
		}
	}

	return ""
}

// AreaForTodofuken returns the canonical area for a prefecture name.
func AreaForTodofuken(pref string) string {
	prefArea, _ := areaTables()
	return prefArea[strings.TrimSpace(pref)]
}
