package extract

import (
	"regexp"

	"github.com/sells-group/jeonse-risk/internal/model"
)

const amountGroup = `금(?P<amount>[\d,억천백십만]+)원`

// Sample is one literal entry body a variant must parse, with the values
// it must produce.
type Sample struct {
	Body   string
	Amount int64
	Holder string
}

// Variant is one named field layout observed in real certificates.
type Variant struct {
	Name    string
	Kind    model.ClaimType
	Pattern *regexp.Regexp
	Samples []Sample
}

// Match applies the variant to an entry body. A match whose amount does not
// parse or whose holder cleans to nothing is not a match.
func (v Variant) Match(body string) (int64, string, bool) {
	m := v.Pattern.FindStringSubmatch(body)
	if m == nil {
		return 0, "", false
	}
	amount, ok := ParseAmount(m[v.Pattern.SubexpIndex("amount")])
	if !ok {
		return 0, "", false
	}
	holder := holderText(m[v.Pattern.SubexpIndex("holder")])
	if holder == "" || roleKeyword.MatchString(holder) {
		return 0, "", false
	}
	return amount, holder, true
}

var roleKeyword = regexp.MustCompile(`근저당권자|저당권자|전세권자|임차권자|채권최고액|전세금|임차보증금`)

// Catalog is an ordered, immutable list of variants. For each entry the
// first matching variant of the entry's kind wins.
type Catalog struct {
	variants []Variant
}

// NewCatalog builds a catalog from variants in priority order.
func NewCatalog(variants ...Variant) Catalog {
	return Catalog{variants: append([]Variant(nil), variants...)}
}

// Variants returns a copy of the catalog in priority order.
func (c Catalog) Variants() []Variant {
	return append([]Variant(nil), c.variants...)
}

// Match returns the first variant of kind that matches body.
func (c Catalog) Match(kind model.ClaimType, body string) (Variant, int64, string, bool) {
	for _, v := range c.variants {
		if v.Kind != kind {
			continue
		}
		if amount, holder, ok := v.Match(body); ok {
			return v, amount, holder, true
		}
	}
	return Variant{}, 0, "", false
}

// DefaultCatalog returns the built-in layout variants.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Variant{
			Name:    "mortgage/amount_then_holder",
			Kind:    model.ClaimMortgage,
			Pattern: regexp.MustCompile(`채권최고액\s*` + amountGroup + `\s*(?:근저당권자|저당권자)\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2020년3월5일 제1234호 채권최고액 금240,000,000원 근저당권자 주식회사국민은행 홍길동",
					Amount: 240_000_000,
					Holder: "주식회사국민은행",
				},
				{
					Body:   "2019년11월3일 제88호 채권최고액 금1억2천만원 근저당권자 (주)한국캐피탈",
					Amount: 120_000_000,
					Holder: "(주)한국캐피탈",
				},
			},
		},
		Variant{
			Name:    "mortgage/holder_then_amount",
			Kind:    model.ClaimMortgage,
			Pattern: regexp.MustCompile(`(?:근저당권자|저당권자)\s*(?P<holder>.+?)\s*채권최고액\s*` + amountGroup),
			Samples: []Sample{
				{
					Body:   "2021년6월1일 제5678호 근저당권자 주식회사하나은행 채권최고액 금360,000,000원 홍길동",
					Amount: 360_000_000,
					Holder: "주식회사하나은행",
				},
				{
					Body:   "2018년1월9일 제301호 근저당권자 홍길동 새마을금고 채권최고액 금60,000,000원",
					Amount: 60_000_000,
					Holder: "새마을금고",
				},
			},
		},
		Variant{
			Name: "mortgage/owner_interleaved",
			Kind: model.ClaimMortgage,
			Pattern: regexp.MustCompile(`채권최고액\s*` + amountGroup +
				`\s*[가-힣]{2,4}(?:\s+[가-힣]{2,4})?\s+(?:근저당권자|저당권자)\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2022년2월14일 제9012호 채권최고액 금156,000,000원 홍길동 근저당권자 주식회사신한은행",
					Amount: 156_000_000,
					Holder: "주식회사신한은행",
				},
			},
		},
		Variant{
			Name:    "mortgage/role_amount_holder",
			Kind:    model.ClaimMortgage,
			Pattern: regexp.MustCompile(`(?:근저당권자|저당권자)\s*채권최고액\s*` + amountGroup + `\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2023년7월20일 제4321호 근저당권자 채권최고액 금84,000,000원 우리캐피탈주식회사 홍길동",
					Amount: 84_000_000,
					Holder: "우리캐피탈주식회사",
				},
			},
		},
		Variant{
			Name: "mortgage/debtor_interleaved",
			Kind: model.ClaimMortgage,
			Pattern: regexp.MustCompile(`채권최고액\s*` + amountGroup +
				`\s*채무자\s*.+?\s(?:근저당권자|저당권자)\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2017년4월3일 제777호 2017년4월3일 설정계약 채권최고액 금130,000,000원 채무자 홍길동 서울특별시 마포구 망원로 1 근저당권자 농협은행주식회사 110111-4809385 서울특별시 중구 통일로 120",
					Amount: 130_000_000,
					Holder: "농협은행주식회사",
				},
			},
		},
		Variant{
			Name:    "lease_deposit/amount_then_holder",
			Kind:    model.ClaimLeaseDepositRight,
			Pattern: regexp.MustCompile(`전세금\s*` + amountGroup + `.*?전세권자\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2022년5월1일 제6666호 전세금 금100,000,000원 전세권자 김철수 홍길동",
					Amount: 100_000_000,
					Holder: "김철수 홍길동",
				},
				{
					Body:   "2020년8월8일 제42호 전세금 금2억원 범위 주거용 건물의 전부 존속기간 2020년8월8일부터 2022년8월7일까지 전세권자 주식회사한국토지신탁",
					Amount: 200_000_000,
					Holder: "주식회사한국토지신탁",
				},
			},
		},
		Variant{
			Name:    "lease_deposit/holder_then_amount",
			Kind:    model.ClaimLeaseDepositRight,
			Pattern: regexp.MustCompile(`전세권자\s*(?P<holder>.+?)\s*전세금\s*` + amountGroup),
			Samples: []Sample{
				{
					Body:   "2021년3월3일 제303호 전세권자 이영희 전세금 금150,000,000원",
					Amount: 150_000_000,
					Holder: "이영희",
				},
			},
		},
		Variant{
			Name:    "tenancy/amount_then_holder",
			Kind:    model.ClaimTenancyRight,
			Pattern: regexp.MustCompile(`임차보증금\s*` + amountGroup + `.*?임차권자\s*(?P<holder>.+)$`),
			Samples: []Sample{
				{
					Body:   "2023년1월5일 제505호 2022년12월20일 서울중앙지방법원의 임차권등기명령 임차보증금 금180,000,000원 차임 없음 점유개시일자 2020년1월1일 임차권자 박민수",
					Amount: 180_000_000,
					Holder: "박민수",
				},
			},
		},
		Variant{
			Name:    "tenancy/holder_then_amount",
			Kind:    model.ClaimTenancyRight,
			Pattern: regexp.MustCompile(`임차권자\s*(?P<holder>.+?)\s*임차보증금\s*` + amountGroup),
			Samples: []Sample{
				{
					Body:   "2023년9월9일 제909호 임차권자 정수진 임차보증금 금95,000,000원",
					Amount: 95_000_000,
					Holder: "정수진",
				},
			},
		},
	)
}
