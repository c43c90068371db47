package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanHolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
	}{
		{"plain bank", "주식회사국민은행", "주식회사국민은행"},
		{"trailing owner", "주식회사국민은행 홍길동", "주식회사국민은행"},
		{"leading owner", "홍길동 주식회사하나은행", "주식회사하나은행"},
		{"both sides", "김영희 농협은행주식회사 홍길동", "농협은행주식회사"},
		{"receipt and id", "제1234호 주식회사신한은행 800101-******* 홍길동", "주식회사신한은행"},
		{"corp reg number", "우리캐피탈주식회사 110111-0012345", "우리캐피탈주식회사"},
		{"paren marker", "(주) 한국캐피탈 홍길동", "(주)한국캐피탈"},
		{"branch kept", "주식회사국민은행 강남지점", "주식회사국민은행 강남지점"},
		{"person only", "김철수", "김철수"},
		{"two persons kept", "김철수 홍길동", "김철수 홍길동"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHolder(tt.in))
		})
	}
}

func TestHolderText_CutsAtDateAndID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "주식회사국민은행", holderText("주식회사국민은행 2022년1월2일 근저당권자 주식회사하나은행"))
	assert.Equal(t, "농협은행주식회사", holderText("농협은행주식회사 110111-4809385 서울특별시 중구 통일로 120"))
}

func TestStripOwners(t *testing.T) {
	t.Parallel()

	owners := []string{"홍길동", "이영희"}
	assert.Equal(t, "김철수", stripOwners("김철수 홍길동", owners))
	assert.Equal(t, "김철수", stripOwners("이영희 김철수 홍길동", owners))
	assert.Equal(t, "홍길동", stripOwners("홍길동", owners), "single token kept")
	assert.Equal(t, "김철수 홍길동", stripOwners("김철수 홍길동", nil))
}
