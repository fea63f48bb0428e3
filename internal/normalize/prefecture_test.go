package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectTodofuken(t *testing.T) {
	assert.Equal(t, "東京都", CorrectTodofuken("東京"))
	assert.Equal(t, "東京都", CorrectTodofuken("東京都"))
	assert.Equal(t, "神奈川県", CorrectTodofuken("神奈"))
	assert.Equal(t, "大阪府", CorrectTodofuken("大阪市内"))
	assert.Equal(t, "", CorrectTodofuken(""))
	assert.Equal(t, "", CorrectTodofuken("不明な場所"))
}

func TestCorrectWorkAreaNewAndLegacyLabels(t *testing.T) {
	assert.Equal(t, "関東", CorrectWorkArea("関東"))
	assert.Equal(t, "関西", CorrectWorkArea("近畿"))
	assert.Equal(t, "中部", CorrectWorkArea("甲信越・北陸"))
	assert.Equal(t, "関東", CorrectWorkArea("首都圏"))
	assert.Equal(t, "北海道", CorrectWorkArea("北海道・東北"))
}

func TestCorrectWorkAreaMapsPrefectures(t *testing.T) {
	assert.Equal(t, "関東", CorrectWorkArea("東京都"))
	assert.Equal(t, "中部", CorrectWorkArea("愛知県"))
	assert.Equal(t, "北海道", CorrectWorkArea("北海道"))
}

func TestCorrectWorkAreaRejectsRemoteAndUnknown(t *testing.T) {
	assert.Equal(t, "", CorrectWorkArea("フルリモート"))
	assert.Equal(t, "", CorrectWorkArea("未知"))
	assert.Equal(t, "", CorrectWorkArea(""))
}

// Every prefecture CorrectTodofuken can produce maps to one of the eight
// areas, so the prefecture → area chain is total.
func TestPrefectureAreaMappingIsTotal(t *testing.T) {
	inputs := []string{
		"北海道", "青森", "岩手", "宮城", "秋田", "山形", "福島", "茨城", "栃木",
		"群馬", "埼玉", "千葉", "東京", "神奈", "新潟", "富山", "石川", "福井",
		"山梨", "長野", "岐阜", "静岡", "愛知", "三重", "滋賀", "京都", "大阪",
		"兵庫", "奈良", "和歌", "鳥取", "島根", "岡山", "広島", "山口", "徳島",
		"香川", "愛媛", "高知", "福岡", "佐賀", "長崎", "熊本", "大分", "宮崎",
		"鹿児", "沖縄",
	}

	for _, input := range inputs {
		pref := CorrectTodofuken(input)
		assert.NotEmpty(t, pref, "input %q", input)

		area := CorrectWorkArea(pref)
		assert.Contains(t, Areas, area, "prefecture %q", pref)
		assert.Equal(t, area, AreaForTodofuken(pref))
	}
}
