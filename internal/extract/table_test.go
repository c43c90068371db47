package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableExtractor_Extract(t *testing.T) {
	t.Parallel()

	tables := []Table{
		{
			Headers: []string{"등기명의인", "(주민)등록번호", "최종지분", "주 소", "순위번호"},
			Rows:    [][]string{{"홍길동 (소유자)", "800101-*******", "단독소유", "서울", "2"}},
		},
		{
			Headers: []string{"순위 번호", "등기 목적", "접수 정보", "주요 등기사항", "대상 소유자"},
			Rows: [][]string{
				{"5", "근저당권 설정", "2020년 3월 5일\n제1234호", "채권최고액 금 240,000,000 원\n근저당권자 주식회사국민은행", "홍길동"},
				{"12", "전세권설정", "2022년5월1일 제6666호", "전세금 금100,000,000원 전세권자 김철수", "홍길동"},
				{"", "", "", "", ""},
			},
		},
		{
			Headers: []string{"순위번호", "등기목적", "접수정보", "주요등기사항", "대상소유자"},
			Rows: [][]string{
				{"3", "가압류", "2021년5월6일 제7777호", "청구금액 금5,000,000원 채권자 주식회사우리카드", "홍길동"},
			},
		},
	}

	tx := NewTableExtractor(DefaultCatalog())
	assert.Equal(t, BackendTable, tx.Name())

	ext, err := tx.Extract(context.Background(), Input{Tables: tables})
	require.NoError(t, err)
	assert.Equal(t, BackendTable, ext.Backend)

	require.Len(t, ext.Mortgages, 1)
	assert.Equal(t, 5, ext.Mortgages[0].Priority)
	assert.Equal(t, int64(240_000_000), ext.Mortgages[0].Amount)
	assert.Equal(t, "주식회사국민은행", ext.Mortgages[0].Holder)

	require.Len(t, ext.LeaseRights, 1)
	assert.Equal(t, "김철수", ext.LeaseRights[0].Holder)

	require.Len(t, ext.Liens, 1)
	assert.Equal(t, 3, ext.Liens[0].Priority)
}

func TestTableExtractor_Unavailable(t *testing.T) {
	t.Parallel()

	tx := NewTableExtractor(DefaultCatalog())
	_, err := tx.Extract(context.Background(), Input{Secured: "text only"})
	assert.True(t, errors.Is(err, ErrBackendUnavailable))

	_, err = tx.Extract(context.Background(), Input{Tables: []Table{{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}}})
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestMapColumns(t *testing.T) {
	t.Parallel()

	cols := mapColumns([]string{"순 위 번 호", "등기목적", "주요등기사항"})
	assert.Equal(t, 0, cols[colPriority])
	assert.Equal(t, 1, cols[colPurpose])
	assert.Equal(t, 2, cols[colDetails])
	_, ok := cols[colOwner]
	assert.False(t, ok)
}
