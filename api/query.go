package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gobuffalo/nulls"
)

type ClaimSort string

const (
	SortNewest     = ClaimSort("newest")
	SortOldest     = ClaimSort("oldest")
	SortAmountDesc = ClaimSort("amount_desc")
	SortAmountAsc  = ClaimSort("amount_asc")
	SortNameAsc    = ClaimSort("name_asc")
	SortNameDesc   = ClaimSort("name_desc")
)

var validSorts = map[ClaimSort]struct{}{
	SortNewest:     {},
	SortOldest:     {},
	SortAmountDesc: {},
	SortAmountAsc:  {},
	SortNameAsc:    {},
	SortNameDesc:   {},
}

// IsDateBased reports whether the sort orders by submission date. Unknown values sort as newest.
func (s ClaimSort) IsDateBased() bool {
	if _, ok := validSorts[s]; !ok {
		return true
	}
	return s == SortNewest || s == SortOldest
}

// ParamValues is satisfied by url.Values
type ParamValues interface {
	Get(string) string
}

// ClaimQuery contains criteria to limit, order and page the results of a claim list
type ClaimQuery struct {
	// Search is text to search across multiple fields
	Search string

	// Status limits results to a single status. Empty or ALL means any status.
	Status ClaimStatus

	// Kind limits results to a single kind. Empty means any kind.
	Kind ClaimKind

	// DateFrom and DateTo are inclusive day bounds on the service date
	DateFrom nulls.Time
	DateTo   nulls.Time

	// AmountMin and AmountMax are inclusive bounds on the amount, in cents
	AmountMin nulls.Int
	AmountMax nulls.Int

	Sort ClaimSort

	// Page is zero-based
	Page int

	// PageSize is the number of records in a single page. Values below 1 use the default.
	PageSize int
}

// MatchesAnyStatus reports whether the status filter is disabled
func (q ClaimQuery) MatchesAnyStatus() bool {
	return q.Status == "" || q.Status == ClaimStatusAll
}

// Limit returns the page size bounded to [1, maxSize], using def for unset values
func (q ClaimQuery) Limit(def, maxSize int) int {
	l := q.PageSize
	if l < 1 {
		l = def
	}
	if l > maxSize {
		l = maxSize
	}
	if l < 1 {
		l = 1
	}
	return l
}

// Offset returns the zero-based page number, never negative
func (q ClaimQuery) Offset() int {
	if q.Page < 0 {
		return 0
	}
	return q.Page
}

// NewClaimQuery parses query string parameter values into query criteria. Unparseable values are ignored.
//
// Example:
//
//	"search=amoxicillin&filter=status:PENDING_MEDICAL,kind:HEALTHCARE_CLAIM&from=2024-01-01&sort=amount_desc"
func NewClaimQuery(values ParamValues) ClaimQuery {
	q := ClaimQuery{Sort: SortNewest}

	q.Search = strings.TrimSpace(values.Get("search"))

	if filter := values.Get("filter"); filter != "" {
		pairs := strings.Split(strings.TrimSpace(filter), ",")
		for _, p := range pairs {
			split := strings.SplitN(p, ":", 2)
			if len(split) != 2 {
				continue
			}
			val := strings.TrimSpace(split[1])
			switch strings.TrimSpace(split[0]) {
			case "status":
				q.Status = ClaimStatus(strings.ToUpper(val))
			case "kind":
				q.Kind = ClaimKind(strings.ToUpper(val))
			}
		}
	}

	if from, ok := parseDate(values.Get("from")); ok {
		q.DateFrom = nulls.NewTime(from)
	}
	if to, ok := parseDate(values.Get("to")); ok {
		q.DateTo = nulls.NewTime(to)
	}

	if lo, ok := parseInt(values.Get("min")); ok {
		q.AmountMin = nulls.NewInt(lo)
	}
	if hi, ok := parseInt(values.Get("max")); ok {
		q.AmountMax = nulls.NewInt(hi)
	}

	if sort := ClaimSort(strings.TrimSpace(values.Get("sort"))); sort != "" {
		if _, ok := validSorts[sort]; ok {
			q.Sort = sort
		}
	}

	if page, ok := parseInt(values.Get("page")); ok {
		q.Page = page
	}

	if limit, ok := parseInt(values.Get("limit")); ok {
		q.PageSize = limit
	}

	return q
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
