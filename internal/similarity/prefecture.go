// Package similarity scores pairs of registry fields (addresses, names) on a
// 0.0-1.0 scale. Both scorers normalize their inputs internally, are
// symmetric, and are safe for concurrent use.
package similarity

import (
	"strings"

	"github.com/sells-group/orglink/internal/normalize"
)

// prefectures lists the 47 prefectures in JIS order. It is read-only.
var prefectures = [...]string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

type prefectureForm struct {
	form string
	name string
}

// prefectureForms holds every spelling a prefecture can take after address
// normalization. Kanji numeral folding turns 三重県 into "3重県", so both
// spellings map to the same name.
var prefectureForms = buildPrefectureForms()

func buildPrefectureForms() []prefectureForm {
	forms := make([]prefectureForm, 0, len(prefectures)+1)
	for _, p := range prefectures {
		forms = append(forms, prefectureForm{form: p, name: p})
		if folded := normalize.KanjiNumerals(p); folded != p {
			forms = append(forms, prefectureForm{form: folded, name: p})
		}
	}
	return forms
}

// Prefectures returns a copy of the prefecture table.
func Prefectures() []string {
	out := make([]string, len(prefectures))
	copy(out, prefectures[:])
	return out
}

// ExtractPrefecture finds the leftmost prefecture in s. It returns the
// canonical prefecture name and the token exactly as it appears in s.
func ExtractPrefecture(s string) (name, token string, ok bool) {
	for i := range s {
		rest := s[i:]
		for _, f := range prefectureForms {
			if strings.HasPrefix(rest, f.form) {
				return f.name, f.form, true
			}
		}
	}
	return "", "", false
}
