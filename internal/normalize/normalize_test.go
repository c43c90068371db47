package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Dates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"2020 년 3 월 5 일 제1234호", "2020년3월5일 제1234호"},
		{"2020년 03월 05일", "2020년03월05일"},
		{"2021. 1. 12. 접수", "2021년1월12일 접수"},
		{"접수 2019.11.3", "접수 2019년11월3일"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestNormalize_Currency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"채권최고액 금 240,000,000 원", "채권최고액 금240,000,000원"},
		{"금 1,000원", "금1,000원"},
		{"전세금 금 2억 4천만 원", "전세금 금2억4천만원"},
		{"금1,000원", "금1,000원"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestNormalize_KeywordSpacing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"근 저 당 권 자 주식회사국민은행", "근저당권자 주식회사국민은행"},
		{"채권 최고액 금1원", "채권최고액 금1원"},
		{"가 압 류", "가압류"},
		{"- 기록사항없음", "- 기록사항 없음"},
		{"기 록 사 항  없 음", "기록사항 없음"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestNormalize_StripsSplicedHeaders(t *testing.T) {
	t.Parallel()

	in := "1 근저당권설정 2020년3월5일 제1234호 순위번호 등기목적 접수정보 주요등기사항 대상소유자 채권최고액 금1원"
	got := Normalize(in)
	assert.Equal(t, "1 근저당권설정 2020년3월5일 제1234호 채권최고액 금1원", got)

	in = "등기명의인 (주민)등록번호 최종지분 주 소 순위번호\n홍길동 (소유자) 단독소유"
	assert.Equal(t, "홍길동 (소유자) 단독소유", Normalize(in))
}

func TestNormalize_Whitespace(t *testing.T) {
	t.Parallel()

	in := "  line one  \t with tabs \r\n\r\n\r\n\r\nline two　end  "
	assert.Equal(t, "line one with tabs\n\nline two end", Normalize(in))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a\n\nb", Normalize("a\n\nb"), "single blank line is kept")
}

func TestNormalize_WidthAndComposition(t *testing.T) {
	t.Parallel()

	// Full-width digits and comma fold to ASCII.
	assert.Equal(t, "금240,000원", Normalize("금２４０，０００원"))
	// Decomposed jamo compose to a syllable.
	assert.Equal(t, "한", Normalize("\u1112\u1161\u11ab"))
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	samples := []string{
		"주요 등기사항 요약 (참고용)\n\n\n3. (근)저당권 및 전세권 등 ( 을구 )\n순위번호 등기목적 접수정보 주요등기사항 대상소유자\n5 근저당권설정 2020 년 3 월 5 일 제1234호 채권 최고액 금 240,000,000 원 근저당권자 주식회사 국민은행 홍길동",
		"- 기 록 사 항 없 음",
		"2021. 1. 12.  가 압 류  청구금액 금 5,000 원\t채권자 주식회사우리카드",
		"근저당권자 주식회사국민은행 2022년1월2일 근저당권자 주식회사하나은행",
		"\r\n\r\n  ​전 세 권 자 김철수  \r\n",
		"전세 순위번호 등기목적 접수정보 주요등기사항 대상소유자 권자 김철수",
	}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input: %q", s)
	}
}

func TestNormalize_HeaderSplicedIntoKeyword(t *testing.T) {
	t.Parallel()

	got := Normalize("전세 순위번호 등기목적 접수정보 주요등기사항 대상소유자 권자 김철수")
	assert.Equal(t, "전세권자 김철수", got)
	assert.Equal(t, got, Normalize(got))
}
