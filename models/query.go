package models

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

// QueryResult is one page of matching claims and the number of matches across all pages
type QueryResult struct {
	Page       Claims
	TotalCount int
	PageNumber int
	PageSize   int
}

// QueryClaims filters, sorts and pages records. It does not modify records or the claims in it.
func QueryClaims(records Claims, q api.ClaimQuery) QueryResult {
	matched := FilterClaims(records, q)
	SortClaims(matched, q.Sort)

	size := q.Limit(domain.Env.QueryDefaultPageSize, domain.Env.QueryMaxPageSize)
	page := q.Offset()

	result := QueryResult{
		TotalCount: len(matched),
		PageNumber: page,
		PageSize:   size,
		Page:       Claims{},
	}

	if len(matched) == 0 || page > (len(matched)-1)/size {
		return result
	}
	start := page * size
	end := domain.MinInt(start+size, len(matched))
	result.Page = matched[start:end]
	return result
}

func ConvertQueryResult(r QueryResult) api.ClaimPage {
	return api.ClaimPage{
		Claims:     ConvertClaims(r.Page),
		TotalCount: r.TotalCount,
		Page:       r.PageNumber,
		PageSize:   r.PageSize,
	}
}

// FilterClaims returns a new slice with the records that satisfy every filter of q
func FilterClaims(records Claims, q api.ClaimQuery) Claims {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Search))

	out := Claims{}
	for _, c := range records {
		if needle != "" && !matchesText(c, needle, folder) {
			continue
		}
		if !q.MatchesAnyStatus() && c.Status != q.Status {
			continue
		}
		if q.Kind != "" && c.Kind != q.Kind {
			continue
		}
		if q.DateFrom.Valid && c.ServiceDate.Before(domain.BeginningOfDay(q.DateFrom.Time)) {
			continue
		}
		if q.DateTo.Valid && c.ServiceDate.After(domain.EndOfDay(q.DateTo.Time)) {
			continue
		}
		if q.AmountMin.Valid && c.Amount < q.AmountMin.Int {
			continue
		}
		if q.AmountMax.Valid && c.Amount > q.AmountMax.Int {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesText(c Claim, needle string, folder cases.Caser) bool {
	fields := []string{
		c.ClientName,
		c.ProviderName,
		c.Diagnosis.String,
		c.Description.String,
		payloadSearchText(c.Payload),
	}
	for _, f := range fields {
		if f != "" && strings.Contains(folder.String(f), needle) {
			return true
		}
	}
	return false
}

// SortClaims orders claims in place. Sorting is stable. Date sorts put claims returned for review first.
func SortClaims(claims Claims, sort api.ClaimSort) {
	if sort.IsDateBased() {
		sortBySubmission(claims, sort == api.SortOldest)
		return
	}

	switch sort {
	case api.SortAmountDesc:
		slices.SortStableFunc(claims, func(a, b Claim) int { return cmp.Compare(b.Amount, a.Amount) })
	case api.SortAmountAsc:
		slices.SortStableFunc(claims, func(a, b Claim) int { return cmp.Compare(a.Amount, b.Amount) })
	case api.SortNameAsc, api.SortNameDesc:
		col := collate.New(language.Und, collate.IgnoreCase)
		dir := 1
		if sort == api.SortNameDesc {
			dir = -1
		}
		slices.SortStableFunc(claims, func(a, b Claim) int {
			return dir * col.CompareString(a.ClientName, b.ClientName)
		})
	}
}

func sortBySubmission(claims Claims, oldestFirst bool) {
	slices.SortStableFunc(claims, func(a, b Claim) int {
		ar := a.Status == api.ClaimStatusReturnedForReview
		br := b.Status == api.ClaimStatusReturnedForReview
		if ar != br {
			if ar {
				return -1
			}
			return 1
		}
		c := a.SubmittedAt.Compare(b.SubmittedAt)
		if oldestFirst {
			return c
		}
		return -c
	})
}

// CountByStatus returns the number of records in each status
func CountByStatus(records Claims) map[api.ClaimStatus]int {
	counts := map[api.ClaimStatus]int{}
	for _, c := range records {
		counts[c.Status]++
	}
	return counts
}
