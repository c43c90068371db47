package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/jeonse-risk/internal/model"
)

func TestDetectFlags(t *testing.T) {
	t.Parallel()

	flags := DetectFlags(FlagInput{
		OwnershipOther: "3 가압류 2021년5월6일 채권자 주식회사우리카드\n4 소유권이전청구권가등기 2022년1월1일 권리자 김철수",
		SecuredClaims:  "8 지상권설정 2015년1월1일 지상권자 한국전력공사",
		Title:          "대지권미등기",
	})

	assert.True(t, flags.Has(model.FlagProvisionalSeizure))
	assert.False(t, flags.Has(model.FlagSeizure), "가압류 alone is not a seizure")
	assert.True(t, flags.Has(model.FlagProvisionalRegistration))
	assert.True(t, flags.Has(model.FlagSuperficies))
	assert.True(t, flags.Has(model.FlagUnregisteredLandRights))
	assert.False(t, flags.Has(model.FlagCoOwnership))
}

func TestDetectFlags_SeizureAndAuction(t *testing.T) {
	t.Parallel()

	flags := DetectFlags(FlagInput{OwnershipOther: "4 압류 2022년2월1일 권리자 국\n6 임의경매개시결정 2023년3월3일"})
	assert.True(t, flags.Has(model.FlagSeizure))
	assert.True(t, flags.Has(model.FlagAuction))
}

func TestDetectFlags_FromLiensAndOwners(t *testing.T) {
	t.Parallel()

	flags := DetectFlags(FlagInput{
		Owners: []model.OwnershipRecord{{Name: "김철수"}, {Name: "이영희"}},
		Liens:  []model.LienRecord{{Type: model.LienProvisionalDisposition}},
	})
	assert.True(t, flags.Has(model.FlagCoOwnership))
	assert.True(t, flags.Has(model.FlagProvisionalDisposition))
}

func TestDetectFlags_OnlyLocatedSections(t *testing.T) {
	t.Parallel()

	flags := DetectFlags(FlagInput{})
	assert.Empty(t, flags.Sorted())

	// Restrictions printed in the secured-claims section do not count as
	// ownership restrictions.
	flags = DetectFlags(FlagInput{SecuredClaims: "가압류"})
	assert.False(t, flags.Has(model.FlagProvisionalSeizure))
}
