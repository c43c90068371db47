package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/jeonse-risk/internal/model"
)

const history = `5 근저당권설정 2019년5월2일 제1234호 채권최고액 금240,000,000원 근저당권자 주식회사국민은행
5-1 근저당권변경 2020년6월1일 제2222호 채권최고액 금300,000,000원
7 근저당권설정 2018년1월2일 제100호 채권최고액 금60,000,000원 근저당권자 김갑동 2020년2월3일 근저당권자 주식회사우리은행
9 근저당권설정 2021년1월5일 제333호 채권최고액 금120,000,000원 근저당권자 신한캐피탈주식회사
9-1 근저당권변경 2021년8월1일 제444호 채무자변경 채무자 홍길동
9-2 근저당권이전 2022년3월4일 제777호 2022년3월2일 확정채권양도 근저당권자 주식회사하나은행`

func base() []model.EncumbranceRecord {
	mk := func(prio int, amount int64, holder string) model.EncumbranceRecord {
		return model.EncumbranceRecord{
			Priority: prio,
			Type:     model.ClaimMortgage,
			Holder:   holder,
			Status:   model.ClaimActive,
		}.WithAmount(amount)
	}
	return []model.EncumbranceRecord{
		mk(5, 240_000_000, "주식회사국민은행"),
		mk(7, 60_000_000, "김갑동"),
		mk(9, 120_000_000, "신한캐피탈주식회사"),
	}
}

func TestParseEvents(t *testing.T) {
	ev := ParseEvents(history)

	require.Len(t, ev.Amendments, 1, "debtor change carries no amount")
	assert.Equal(t, model.AmendmentEvent{
		Parent:   5,
		SubIndex: 1,
		Amount:   300_000_000,
		Date:     time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
	}, ev.Amendments[0])

	require.Len(t, ev.Transfers, 2)
	assert.Equal(t, model.TransferEvent{
		Parent: 7,
		Holder: "주식회사우리은행",
		Date:   time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC),
	}, ev.Transfers[0])
	assert.Equal(t, 9, ev.Transfers[1].Parent)
	assert.Equal(t, 2, ev.Transfers[1].SubIndex)
	assert.Equal(t, "주식회사하나은행", ev.Transfers[1].Holder)
}

func TestResolve_AmendmentReplacesAmount(t *testing.T) {
	text := `5 근저당권설정 2019년5월2일 제1234호 채권최고액 금240,000,000원 근저당권자 주식회사국민은행
5-1 근저당권변경 2020년6월1일 제2222호 채권최고액 금300,000,000원
9 근저당권설정 2021년1월5일 제333호 채권최고액 금120,000,000원 근저당권자 신한캐피탈주식회사`

	got := Resolve(base(), text)
	require.Len(t, got, 3)

	assert.Equal(t, 5, got[0].Priority)
	assert.Equal(t, int64(300_000_000), got[0].Amount)
	assert.Equal(t, int64(250_000_000), got[0].EstimatedPrincipal)
	assert.Equal(t, "주식회사국민은행", got[0].Holder)

	assert.Equal(t, 9, got[2].Priority)
	assert.Equal(t, int64(120_000_000), got[2].Amount)
	assert.Equal(t, int64(100_000_000), got[2].EstimatedPrincipal)
}

func TestResolve_AmendmentAndTransferIndependent(t *testing.T) {
	got := Resolve(base(), history)

	assert.Equal(t, int64(300_000_000), got[0].Amount)
	assert.Equal(t, "주식회사국민은행", got[0].Holder)
	assert.Equal(t, "주식회사우리은행", got[1].Holder, "inline transfer")
	assert.Equal(t, int64(60_000_000), got[1].Amount)
	assert.Equal(t, "주식회사하나은행", got[2].Holder)
	assert.Equal(t, int64(120_000_000), got[2].Amount)
}

func TestApply_HighestSubIndexWins(t *testing.T) {
	ev := Events{
		Amendments: []model.AmendmentEvent{
			{Parent: 5, SubIndex: 3, Amount: 280_000_000},
			{Parent: 5, SubIndex: 1, Amount: 300_000_000},
			{Parent: 5, SubIndex: 2, Amount: 360_000_000},
		},
		Transfers: []model.TransferEvent{
			{Parent: 5, SubIndex: 0, Holder: "주식회사우리은행"},
			{Parent: 5, SubIndex: 4, Holder: "주식회사하나은행"},
		},
	}
	got := Apply(base(), ev)
	assert.Equal(t, int64(280_000_000), got[0].Amount, "latest, not largest")
	assert.Equal(t, "주식회사하나은행", got[0].Holder)
}

func TestApply_Idempotent(t *testing.T) {
	ev := ParseEvents(history)
	once := Apply(base(), ev)

	assert.Equal(t, once, Apply(once, ev))

	doubled := Events{
		Amendments: append(append([]model.AmendmentEvent(nil), ev.Amendments...), ev.Amendments...),
		Transfers:  append(append([]model.TransferEvent(nil), ev.Transfers...), ev.Transfers...),
	}
	assert.Equal(t, once, Apply(base(), doubled))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := base()
	Apply(records, Events{Amendments: []model.AmendmentEvent{{Parent: 5, SubIndex: 1, Amount: 1}}})
	assert.Equal(t, int64(240_000_000), records[0].Amount)
}

func TestApply_DanglingReferenceLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	got := Apply(base(), Events{
		Amendments: []model.AmendmentEvent{{Parent: 12, SubIndex: 1, Amount: 1}},
		Transfers:  []model.TransferEvent{{Parent: 13, SubIndex: 1, Holder: "x"}},
	})
	assert.Equal(t, base(), got)

	entries := logs.FilterMessage("resolve: event references unknown claim").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "amendment", entries[0].ContextMap()["kind"])
	assert.Equal(t, int64(12), entries[0].ContextMap()["parent"])
}

func TestResolve_NoEvents(t *testing.T) {
	assert.True(t, ParseEvents("").Empty())
	assert.Equal(t, base(), Resolve(base(), ""))
}
