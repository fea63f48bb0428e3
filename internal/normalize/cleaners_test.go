package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStation(t *testing.T) {
	assert.Equal(t, "", NormalizeStation(""))
	assert.Equal(t, "", NormalizeStation("   "))
	assert.Equal(t, "新宿駅", NormalizeStation("新宿"))
	assert.Equal(t, "池袋駅", NormalizeStation("  池袋  "))
	assert.Equal(t, "渋谷駅", NormalizeStation("渋谷駅"))
}

func TestCorrectTalentContractType(t *testing.T) {
	assert.Equal(t, "直個人", CorrectTalentContractType("  ", true))
	assert.Equal(t, "", CorrectTalentContractType("", false))
	assert.Equal(t, "直個人", CorrectTalentContractType("フリーランス", true))
	assert.Equal(t, "契約社員", CorrectTalentContractType("契約形態:契約", true))
	assert.Equal(t, "正社員", CorrectTalentContractType("正社員希望", false))
	assert.Equal(t, "直個人", CorrectTalentContractType("謎の形態", true))
	assert.Equal(t, "", CorrectTalentContractType("謎の形態", false))
}

func TestCorrectGenderAlwaysReturnsValue(t *testing.T) {
	assert.Equal(t, "男性", CorrectGender("男性"))
	assert.Equal(t, "女性", CorrectGender("女"))
	assert.Equal(t, "その他/無回答", CorrectGender("その他"))
	assert.Equal(t, "その他/無回答", CorrectGender("   "))
}

func TestCorrectJapaneseSkill(t *testing.T) {
	assert.Equal(t, "ネイティブ", CorrectJapaneseSkill("ネイティブ"))
	assert.Equal(t, "N2", CorrectJapaneseSkill("n2"))
	assert.Equal(t, "N1", CorrectJapaneseSkill("ビジネスレベル"))
	assert.Equal(t, "不要", CorrectJapaneseSkill("日本語不問"))
	assert.Equal(t, "", CorrectJapaneseSkill(""))
}

func TestIsJapaneseKO(t *testing.T) {
	n1, n2, n3, fuyou := "N1", "N2", "N3", "不要"

	ko, known := IsJapaneseKO(&n2, &n1)
	assert.True(t, known)
	assert.False(t, ko)

	ko, known = IsJapaneseKO(&n2, &n3)
	assert.True(t, known)
	assert.True(t, ko)

	// 不要 requirement always passes, even with no talent level.
	ko, known = IsJapaneseKO(&fuyou, nil)
	assert.True(t, known)
	assert.False(t, ko)

	// Requirement with an unknown talent level is insufficient information.
	_, known = IsJapaneseKO(&n2, nil)
	assert.False(t, known)

	// Unknown requirement passes as insufficient information.
	_, known = IsJapaneseKO(nil, &n1)
	assert.False(t, known)
}

func TestCorrectEnglishSkill(t *testing.T) {
	assert.Equal(t, "ネイティブ", CorrectEnglishSkill("ネイティブ"))
	assert.Equal(t, "ビジネス", CorrectEnglishSkill("Business conversation"))
	assert.Equal(t, "読み書き", CorrectEnglishSkill("reading"))
	assert.Equal(t, "", CorrectEnglishSkill("  "))
}

func TestIsEnglishKO(t *testing.T) {
	business, kaiwa, native, fuyou := "ビジネス", "会話", "ネイティブ", "不要"

	assert.False(t, IsEnglishKO(&fuyou, nil))
	assert.False(t, IsEnglishKO(nil, nil))
	assert.True(t, IsEnglishKO(&business, &kaiwa))
	assert.True(t, IsEnglishKO(&business, nil))
	assert.False(t, IsEnglishKO(&business, &native))
}

func TestNormalizeRemoteOnsiteAlwaysReturnsCanonical(t *testing.T) {
	assert.Equal(t, "リモート併用", NormalizeRemoteOnsite(""))
	assert.Equal(t, "フルリモート", NormalizeRemoteOnsite("full remote"))
	assert.Equal(t, "フル出社", NormalizeRemoteOnsite("常駐"))
	assert.Equal(t, "リモート併用", NormalizeRemoteOnsite("よくわからない"))
}

func TestCorrectRemoteOnsite(t *testing.T) {
	assert.Equal(t, "フルリモート", CorrectRemoteOnsite("フルリモート"))
	assert.Equal(t, "フル出社", CorrectRemoteOnsite("客先常駐"))
	assert.Equal(t, "リモート併用", CorrectRemoteOnsite("ハイブリッド"))
	assert.Equal(t, "", CorrectRemoteOnsite(""))
	assert.Equal(t, "", CorrectRemoteOnsite("謎"))
}

func TestFlowDepthCorrections(t *testing.T) {
	assert.Equal(t, "1次請け", CorrectFlowDept("元請案件"))
	assert.Equal(t, "不明", CorrectFlowDept(""))
	assert.Equal(t, "4次請け以上", CorrectFlowDept("4次です"))

	assert.Equal(t, "3社先以上", CorrectTalentFlowDepth("３社先"))
	assert.Equal(t, "直", CorrectTalentFlowDepth("貴社直"))
	assert.Equal(t, "", CorrectTalentFlowDepth(""))

	assert.Equal(t, "商流制限なし", CorrectJinzaiFlowLimit("制限なし"))
	assert.Equal(t, "SPONTO一社先まで", CorrectJinzaiFlowLimit("sponto一社先まで"))
	assert.Equal(t, "", CorrectJinzaiFlowLimit("unknown"))
}

func TestFlowDepthParsing(t *testing.T) {
	depth, ok := ParseProjectFlowDepth("1次請け")
	assert.True(t, ok)
	assert.Equal(t, 1, depth)

	depth, ok = ParseTalentFlowDepth("1社先")
	assert.True(t, ok)
	assert.Equal(t, 1, depth)

	depth, ok = ParseTalentFlowDepth("自社")
	assert.True(t, ok)
	assert.Equal(t, 0, depth)

	limit, ok := ParseFlowLimit(" 制限なし")
	assert.True(t, ok)
	assert.Equal(t, FlowDepthUnlimited, limit)

	limit, ok = ParseFlowLimit("sponto一社先まで")
	assert.True(t, ok)
	assert.Equal(t, 1, limit)

	_, ok = ParseFlowLimit("unknown")
	assert.False(t, ok)
}

func TestIsJapaneseNationality(t *testing.T) {
	assert.True(t, IsJapaneseNationality("日本"))
	assert.True(t, IsJapaneseNationality(" 日本国籍 "))
	assert.True(t, IsJapaneseNationality("JAPAN"))
	assert.True(t, IsJapaneseNationality("Japanese"))
	assert.False(t, IsJapaneseNationality("USA"))
	assert.False(t, IsJapaneseNationality("フランス"))
	assert.False(t, IsJapaneseNationality(""))
}

func TestInferTechCategoryPriorityOrder(t *testing.T) {
	assert.Equal(t, "生成AI関連", InferTechCategory([]string{"ChatGPT", "Python"}))
	assert.Equal(t, "生成AI関連", InferTechCategory([]string{"Llama2", "Java"}))
	assert.Equal(t, "人気技術", InferTechCategory([]string{"AWS", "Docker"}))
	assert.Equal(t, "レガシー", InferTechCategory([]string{"COBOL", "AS400"}))
	assert.Equal(t, "", InferTechCategory([]string{"Excel"}))
}
