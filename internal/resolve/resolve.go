// Package resolve folds amendment and transfer sub-entries into the current
// state of each registered claim.
package resolve

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/extract"
	"github.com/sells-group/jeonse-risk/internal/model"
)

// Events holds the change history parsed from one section.
type Events struct {
	Amendments []model.AmendmentEvent
	Transfers  []model.TransferEvent
}

// Empty reports whether no events were parsed.
func (e Events) Empty() bool {
	return len(e.Amendments) == 0 && len(e.Transfers) == 0
}

var (
	firstRole    = regexp.MustCompile(`(?:근저당권자|저당권자|전세권자|임차권자)`)
	inlineChange = regexp.MustCompile(`(\d{4}년\d{1,2}월\d{1,2}일)\s*(?:근저당권자|저당권자|전세권자|임차권자)\s*`)
)

// ParseEvents extracts amendment and transfer events from section text.
// Amendment sub-entries without an amount (debtor or term changes) carry
// nothing to apply and are skipped.
func ParseEvents(sectionText string) Events {
	var ev Events
	for _, e := range extract.SplitEntries(sectionText) {
		switch {
		case e.Sub > 0 && e.Purpose == extract.PurposeAmendment:
			amount, ok := extract.FindAmount(e.Body)
			if !ok {
				continue
			}
			ev.Amendments = append(ev.Amendments, model.AmendmentEvent{
				Parent:   e.Priority,
				SubIndex: e.Sub,
				Amount:   amount,
				Date:     extract.FirstDate(e.Body),
			})
		case e.Sub > 0 && e.Purpose == extract.PurposeTransfer:
			holder, ok := extract.HolderAfterRole(e.Body)
			if !ok {
				continue
			}
			ev.Transfers = append(ev.Transfers, model.TransferEvent{
				Parent:   e.Priority,
				SubIndex: e.Sub,
				Holder:   holder,
				Date:     extract.FirstDate(e.Body),
			})
		case e.Sub == 0:
			if t, ok := inlineTransfer(e); ok {
				ev.Transfers = append(ev.Transfers, t)
			}
		}
	}
	return ev
}

// inlineTransfer finds the "oldName DATE role newName" form written into
// the holder field of a base entry. The last such change is current.
func inlineTransfer(e extract.Entry) (model.TransferEvent, bool) {
	role := firstRole.FindStringIndex(e.Body)
	if role == nil {
		return model.TransferEvent{}, false
	}
	tail := e.Body[role[1]:]
	locs := inlineChange.FindAllStringSubmatchIndex(tail, -1)
	if len(locs) == 0 {
		return model.TransferEvent{}, false
	}
	last := locs[len(locs)-1]
	holder, ok := extract.HolderAfterRole(tail[last[0]:])
	if !ok {
		return model.TransferEvent{}, false
	}
	date, _ := extract.ParseDate(tail[last[2]:last[3]])
	return model.TransferEvent{Parent: e.Priority, Holder: holder, Date: date}, true
}

// Apply folds events into records and returns the updated records in
// their original order. For each parent only the event with the highest
// sub-index per kind is applied, so applying a log twice changes nothing.
// Events for a parent with no base record are logged and skipped.
func Apply(records []model.EncumbranceRecord, ev Events) []model.EncumbranceRecord {
	arena := make(map[int]model.EncumbranceRecord, len(records))
	for _, r := range records {
		arena[r.Priority] = r
	}

	amendments := append([]model.AmendmentEvent(nil), ev.Amendments...)
	sort.SliceStable(amendments, func(i, j int) bool {
		if amendments[i].Parent != amendments[j].Parent {
			return amendments[i].Parent < amendments[j].Parent
		}
		return amendments[i].SubIndex > amendments[j].SubIndex
	})
	applied := make(map[int]bool)
	for _, a := range amendments {
		if applied[a.Parent] {
			continue
		}
		applied[a.Parent] = true
		rec, ok := arena[a.Parent]
		if !ok {
			dangling("amendment", a.Parent, a.SubIndex)
			continue
		}
		arena[a.Parent] = rec.WithAmount(a.Amount)
	}

	transfers := append([]model.TransferEvent(nil), ev.Transfers...)
	sort.SliceStable(transfers, func(i, j int) bool {
		if transfers[i].Parent != transfers[j].Parent {
			return transfers[i].Parent < transfers[j].Parent
		}
		return transfers[i].SubIndex > transfers[j].SubIndex
	})
	applied = make(map[int]bool)
	for _, t := range transfers {
		if applied[t.Parent] {
			continue
		}
		applied[t.Parent] = true
		rec, ok := arena[t.Parent]
		if !ok {
			dangling("transfer", t.Parent, t.SubIndex)
			continue
		}
		rec.Holder = t.Holder
		arena[t.Parent] = rec
	}

	out := make([]model.EncumbranceRecord, len(records))
	for i, r := range records {
		out[i] = arena[r.Priority]
	}
	return out
}

func dangling(kind string, parent, sub int) {
	zap.L().Warn("resolve: event references unknown claim",
		zap.String("kind", kind),
		zap.Int("parent", parent),
		zap.Int("sub_index", sub),
	)
}

// Resolve parses the change history in sectionText and applies it to
// records.
func Resolve(records []model.EncumbranceRecord, sectionText string) []model.EncumbranceRecord {
	return Apply(records, ParseEvents(sectionText))
}
