package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName_Empty(t *testing.T) {
	assert.Equal(t, "", Name(""))
	assert.Equal(t, "", Name("株式会社"))
	assert.Equal(t, "", Name("　 "))
}

func TestName_StripsCorporateType(t *testing.T) {
	assert.Equal(t, "foo", Name("FOO株式会社"))
	assert.Equal(t, "foo", Name("株式会社FOO"))
	assert.Equal(t, "bar", Name("BAR 株式会社"))
	assert.Equal(t, "baz", Name("有限会社 BAZ"))
	assert.Equal(t, "qux", Name("合同会社QUX"))
}

func TestName_FoldsAndLowers(t *testing.T) {
	assert.Equal(t, "baznextstage", Name("Baz Next Stage"))
	assert.Equal(t, "baznextstage", Name("ＢａｚＮｅｘｔＳｔａｇｅ"))
	assert.Equal(t, "abc123", Name("ＡＢＣ１２３"))
}

func TestName_RemovesSymbols(t *testing.T) {
	assert.Equal(t, "quxロジテック", Name("QUXロジテック 株式会社"))
	// The long-vowel mark is part of the symbol set.
	assert.Equal(t, "abcホルディングス", Name("ＡＢＣ・ホールディングス"))
	assert.Equal(t, "foobar", Name("【FOO】「BAR」!?"))
}

func TestRemoveCorporateType_KeepsSpacing(t *testing.T) {
	assert.Equal(t, "BAR ", RemoveCorporateType("BAR 株式会社"))
	assert.Equal(t, " QUX", RemoveCorporateType("合同会社 QUX"))
	assert.Equal(t, "", RemoveCorporateType(""))
}

func TestFoldAlnum(t *testing.T) {
	assert.Equal(t, "AZaz09", FoldAlnum("ＡＺａｚ０９"))
	// Full-width punctuation and katakana are not folded.
	assert.Equal(t, "！アA", FoldAlnum("！アＡ"))
}

func TestRemoveSymbols(t *testing.T) {
	assert.Equal(t, "ABC", RemoveSymbols("A・B、C。"))
	assert.Equal(t, "AB", RemoveSymbols("(A)［B］"))
	assert.Equal(t, "A B", RemoveSymbols("A B"))
	assert.Equal(t, "", RemoveSymbols(""))
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"FOO株式会社",
		"BAR 株式会社",
		"株式・会社FOO",
		"株式株式会社会社",
		"QUXロジテック 株式会社",
		"（ＡＢＣ）　Ｈｏｌｄｉｎｇｓ",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "input %q", in)
	}
}

func TestCleanField(t *testing.T) {
	assert.Equal(t, "岩手県 FOO市", CleanField("岩手県\nFOO市"))
	assert.Equal(t, "A B C", CleanField("A\r\nB\rC"))
	assert.Equal(t, "plain", CleanField("plain"))
}
