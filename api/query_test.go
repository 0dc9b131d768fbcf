package api

import (
	"net/url"
	"testing"
	"time"
)

func (ts *TestSuite) TestNewClaimQuery() {
	tests := []struct {
		name          string
		qs            string
		wantSearch    string
		wantStatus    ClaimStatus
		wantKind      ClaimKind
		wantSort      ClaimSort
		wantPage      int
		wantPageSize  int
		wantFrom      string
		wantTo        string
		wantAmountMin int
		wantAmountMax int
	}{
		{
			name:     "default",
			qs:       "",
			wantSort: SortNewest,
		},
		{
			name:       "status filter",
			qs:         "filter=status:returned_for_review",
			wantStatus: ClaimStatusReturnedForReview,
			wantSort:   SortNewest,
		},
		{
			name:       "status and kind with spaces",
			qs:         "filter= status : PENDING_MEDICAL , kind : EMERGENCY_REQUEST ",
			wantStatus: ClaimStatusPendingMedical,
			wantKind:   ClaimKindEmergency,
			wantSort:   SortNewest,
		},
		{
			name:       "search",
			qs:         "search=%20amoxicillin%20",
			wantSearch: "amoxicillin",
			wantSort:   SortNewest,
		},
		{
			name:         "paging",
			qs:           "page=3&limit=25",
			wantSort:     SortNewest,
			wantPage:     3,
			wantPageSize: 25,
		},
		{
			name:     "bad paging ignored",
			qs:       "page=x&limit=",
			wantSort: SortNewest,
		},
		{
			name:     "valid sort",
			qs:       "sort=amount_desc",
			wantSort: SortAmountDesc,
		},
		{
			name:     "unknown sort falls back",
			qs:       "sort=sideways",
			wantSort: SortNewest,
		},
		{
			name:     "date range",
			qs:       "from=2024-01-01&to=2024-01-31",
			wantSort: SortNewest,
			wantFrom: "2024-01-01",
			wantTo:   "2024-01-31",
		},
		{
			name:     "bad date ignored",
			qs:       "from=01/02/2024",
			wantSort: SortNewest,
		},
		{
			name:          "amount range",
			qs:            "min=100&max=5000",
			wantSort:      SortNewest,
			wantAmountMin: 100,
			wantAmountMax: 5000,
		},
	}
	for _, tt := range tests {
		ts.T().Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.qs)

			got := NewClaimQuery(values)
			ts.Equal(tt.wantSearch, got.Search, "search is incorrect")
			ts.Equal(tt.wantStatus, got.Status, "status is incorrect")
			ts.Equal(tt.wantKind, got.Kind, "kind is incorrect")
			ts.Equal(tt.wantSort, got.Sort, "sort is incorrect")
			ts.Equal(tt.wantPage, got.Page, "page is incorrect")
			ts.Equal(tt.wantPageSize, got.PageSize, "page size is incorrect")

			if tt.wantFrom == "" {
				ts.False(got.DateFrom.Valid, "from should not be set")
			} else {
				ts.Equal(tt.wantFrom, got.DateFrom.Time.Format(time.DateOnly))
			}
			if tt.wantTo == "" {
				ts.False(got.DateTo.Valid, "to should not be set")
			} else {
				ts.Equal(tt.wantTo, got.DateTo.Time.Format(time.DateOnly))
			}

			if tt.wantAmountMin == 0 {
				ts.False(got.AmountMin.Valid)
			} else {
				ts.Equal(tt.wantAmountMin, got.AmountMin.Int)
			}
			if tt.wantAmountMax == 0 {
				ts.False(got.AmountMax.Valid)
			} else {
				ts.Equal(tt.wantAmountMax, got.AmountMax.Int)
			}
		})
	}
}

func (ts *TestSuite) TestClaimQuery_Limit() {
	tests := []struct {
		name     string
		pageSize int
		want     int
	}{
		{name: "unset uses default", pageSize: 0, want: 10},
		{name: "negative uses default", pageSize: -4, want: 10},
		{name: "within range", pageSize: 7, want: 7},
		{name: "capped", pageSize: 500, want: 50},
	}
	for _, tt := range tests {
		ts.T().Run(tt.name, func(t *testing.T) {
			ts.Equal(tt.want, ClaimQuery{PageSize: tt.pageSize}.Limit(10, 50))
		})
	}
}

func (ts *TestSuite) TestClaimQuery_Offset() {
	ts.Equal(0, ClaimQuery{Page: -3}.Offset())
	ts.Equal(0, ClaimQuery{}.Offset())
	ts.Equal(4, ClaimQuery{Page: 4}.Offset())
}

func (ts *TestSuite) TestClaimQuery_MatchesAnyStatus() {
	ts.True(ClaimQuery{}.MatchesAnyStatus())
	ts.True(ClaimQuery{Status: ClaimStatusAll}.MatchesAnyStatus())
	ts.False(ClaimQuery{Status: ClaimStatusApprovedFinal}.MatchesAnyStatus())
}

func (ts *TestSuite) TestClaimSort_IsDateBased() {
	ts.True(SortNewest.IsDateBased())
	ts.True(SortOldest.IsDateBased())
	ts.True(ClaimSort("").IsDateBased())
	ts.False(SortAmountAsc.IsDateBased())
	ts.False(SortNameDesc.IsDateBased())
	ts.True(ClaimSort("price").IsDateBased(), "unknown sorts order by date")
}
