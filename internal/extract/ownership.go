package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/jeonse-risk/internal/model"
)

var (
	ownerMarker  = regexp.MustCompile(`\(\s*(소유자|공유자)\s*\)`)
	shareSole    = regexp.MustCompile(`단독\s*소유`)
	shareKorean  = regexp.MustCompile(`(\d+)\s*분의\s*(\d+)`)
	shareSlash   = regexp.MustCompile(`(?:^|\s)(\d+)\s*/\s*(\d+)(?:\s|$)`)
	sharePercent = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	acquisition  = regexp.MustCompile(`협의분할에\s*의한\s*상속|매매|상속|증여|신탁재산귀속|신탁|임의경매로\s*인한\s*매각|강제경매로\s*인한\s*매각|매각|교환|판결|수용|분할|대물변제|공매`)
)

// ParseOwnership reads current owners from the ownership summary and fills
// acquisition date and method from the 갑구 body when it was located.
// Shares are parsed independently and never checked to sum to 100.
func ParseOwnership(summary, body string) []model.OwnershipRecord {
	owners := []model.OwnershipRecord{}
	locs := ownerMarker.FindAllStringIndex(summary, -1)
	for i, loc := range locs {
		fields := strings.Fields(summary[:loc[0]])
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]

		end := len(summary)
		if i+1 < len(locs) {
			end = lineStart(summary, locs[i+1][0])
			if end < loc[1] {
				end = locs[i+1][0]
			}
		}
		owners = append(owners, model.OwnershipRecord{
			Name:         name,
			SharePercent: parseShare(summary[loc[1]:end]),
		})
	}
	enrichOwners(owners, body)
	return owners
}

// lineStart returns the start of the line containing pos, so the next
// owner's name is not read as part of the previous owner's row.
func lineStart(s string, pos int) int {
	if i := strings.LastIndexByte(s[:pos], '\n'); i >= 0 {
		return i
	}
	return pos
}

func parseShare(row string) float64 {
	row = idToken.ReplaceAllString(row, " ")
	if shareSole.MatchString(row) {
		return 100
	}
	if m := shareKorean.FindStringSubmatch(row); m != nil {
		den, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		return ratioPercent(num, den)
	}
	if m := sharePercent.FindStringSubmatch(row); m != nil {
		p, _ := strconv.ParseFloat(m[1], 64)
		return round2(p)
	}
	if m := shareSlash.FindStringSubmatch(row); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		return ratioPercent(num, den)
	}
	return 0
}

func ratioPercent(num, den float64) float64 {
	if den <= 0 || num <= 0 || num > den {
		return 0
	}
	return round2(num / den * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// enrichOwners applies 갑구 ownership entries in registry order so the
// latest registration naming an owner wins.
func enrichOwners(owners []model.OwnershipRecord, body string) {
	if body == "" || len(owners) == 0 {
		return
	}
	for _, e := range SplitEntries(body) {
		if e.Purpose != PurposeOwnership {
			continue
		}
		method := ""
		if strings.HasSuffix(e.Keyword, "보존") {
			method = "보존"
		} else if m := acquisition.FindString(e.Body); m != "" {
			method = strings.Join(strings.Fields(m), " ")
		}
		for i := range owners {
			if !strings.Contains(e.Body, owners[i].Name) {
				continue
			}
			owners[i].RegisteredAt = FirstDate(e.Body)
			if method != "" {
				owners[i].AcquisitionMethod = method
			}
		}
	}
}
