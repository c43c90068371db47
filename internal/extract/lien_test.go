package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/model"
)

func TestParseLiens(t *testing.T) {
	t.Parallel()

	text := `3 가압류 2021년5월6일 제7777호 청구금액 금5,000,000원 채권자 주식회사우리카드 홍길동
4 압류 2022년2월1일 제801호 권리자 서울특별시마포구
6 임의경매개시결정 2023년3월3일 제3003호 채권자 주식회사국민은행
7 가처분 2023년4월4일 제4004호 가처분권자 이영희
7 가처분 2023년4월4일 제4004호 가처분권자 중복`

	liens := ParseLiens(text)
	require.Len(t, liens, 4)

	assert.Equal(t, model.LienProvisionalSeizure, liens[0].Type, "가압류 must not parse as 압류")
	assert.Equal(t, "주식회사우리카드", liens[0].Claimant)
	require.NotNil(t, liens[0].Amount)
	assert.Equal(t, int64(5_000_000), *liens[0].Amount)
	assert.Equal(t, time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC), liens[0].RegisteredAt)

	assert.Equal(t, model.LienSeizure, liens[1].Type)
	assert.Equal(t, "서울특별시마포구", liens[1].Claimant)
	assert.Nil(t, liens[1].Amount)

	assert.Equal(t, model.LienAuction, liens[2].Type)
	assert.Equal(t, model.LienProvisionalDisposition, liens[3].Type)
	assert.Equal(t, "이영희", liens[3].Claimant)
}

func TestParseLiens_Empty(t *testing.T) {
	t.Parallel()

	liens := ParseLiens("")
	assert.NotNil(t, liens)
	assert.Empty(t, liens)

	assert.Empty(t, ParseLiens("2 소유권이전청구권가등기 2020년1월1일 권리자 김철수"))
}
