package models

import (
	"math"
	"testing"
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

func queryClaimFixtures() Claims {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	ana := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "Ana Lopez", 1200, base)
	ana.Diagnosis = nulls.NewString("Influenza")

	bob := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusReturnedForReview, "bob stone", 800, base.Add(time.Hour))

	cleo := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingCoordination, "Cléo Martin", 5000, base.Add(2*time.Hour))
	cleo.Payload = PharmacistPayload{Items: LineItems{{ID: "x", Name: "Amoxicillin", Price: 5000, ResolvedPrice: 5000}}}
	cleo.ProviderRole = api.ProviderRolePharmacist

	dan := ClaimFixture(api.ClaimKindEmergency, api.ClaimStatusPendingMedical, "Dan Wu", 300, base.Add(3*time.Hour))
	dan.Description = nulls.NewString("night shift ER visit")
	dan.ServiceDate = time.Date(2024, 2, 10, 23, 30, 0, 0, time.UTC)

	eve := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusReturnedForReview, "", 0, base.Add(4*time.Hour))
	eve.ProviderName = "Mercy Clinic"

	return Claims{ana, bob, cleo, dan, eve}
}

func names(cs Claims) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ClientName
	}
	return out
}

func (ms *ModelSuite) TestQueryClaims_Filters() {
	records := queryClaimFixtures()

	tests := []struct {
		name  string
		query api.ClaimQuery
		want  []string
	}{
		{
			name:  "no filters",
			query: api.ClaimQuery{Sort: api.SortOldest},
			want:  []string{"bob stone", "", "Ana Lopez", "Cléo Martin", "Dan Wu"},
		},
		{
			name:  "search client name ignores case",
			query: api.ClaimQuery{Search: "BOB", Sort: api.SortOldest},
			want:  []string{"bob stone"},
		},
		{
			name:  "search diagnosis",
			query: api.ClaimQuery{Search: "influenza"},
			want:  []string{"Ana Lopez"},
		},
		{
			name:  "search description",
			query: api.ClaimQuery{Search: "night SHIFT"},
			want:  []string{"Dan Wu"},
		},
		{
			name:  "search payload",
			query: api.ClaimQuery{Search: "amoxicillin"},
			want:  []string{"Cléo Martin"},
		},
		{
			name:  "search provider name",
			query: api.ClaimQuery{Search: "mercy"},
			want:  []string{""},
		},
		{
			name:  "status",
			query: api.ClaimQuery{Status: api.ClaimStatusReturnedForReview, Sort: api.SortOldest},
			want:  []string{"bob stone", ""},
		},
		{
			name:  "status ALL",
			query: api.ClaimQuery{Status: api.ClaimStatusAll, Kind: api.ClaimKindEmergency},
			want:  []string{"Dan Wu"},
		},
		{
			name:  "amount range is inclusive",
			query: api.ClaimQuery{AmountMin: nulls.NewInt(300), AmountMax: nulls.NewInt(1200), Sort: api.SortAmountAsc},
			want:  []string{"Dan Wu", "bob stone", "Ana Lopez"},
		},
		{
			name: "date to covers the whole day",
			query: api.ClaimQuery{
				DateFrom: nulls.NewTime(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
				DateTo:   nulls.NewTime(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
			},
			want: []string{"Dan Wu"},
		},
		{
			name: "date from excludes earlier days",
			query: api.ClaimQuery{
				DateFrom: nulls.NewTime(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)),
			},
			want: []string{"Dan Wu"},
		},
		{
			name:  "filters are combined",
			query: api.ClaimQuery{Search: "general", Status: api.ClaimStatusPendingMedical},
			want:  []string{"Dan Wu", "Ana Lopez"},
		},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			got := QueryClaims(records, tt.query)
			ms.Equal(tt.want, names(got.Page))
			ms.Equal(len(tt.want), got.TotalCount)
		})
	}
}

func (ms *ModelSuite) TestQueryClaims_Sort() {
	records := queryClaimFixtures()

	tests := []struct {
		name string
		sort api.ClaimSort
		want []string
	}{
		{name: "newest puts returned first", sort: api.SortNewest, want: []string{"", "bob stone", "Dan Wu", "Cléo Martin", "Ana Lopez"}},
		{name: "empty sort is newest", sort: "", want: []string{"", "bob stone", "Dan Wu", "Cléo Martin", "Ana Lopez"}},
		{name: "unknown sort is newest", sort: "price", want: []string{"", "bob stone", "Dan Wu", "Cléo Martin", "Ana Lopez"}},
		{name: "oldest puts returned first", sort: api.SortOldest, want: []string{"bob stone", "", "Ana Lopez", "Cléo Martin", "Dan Wu"}},
		{name: "amount desc", sort: api.SortAmountDesc, want: []string{"Cléo Martin", "Ana Lopez", "bob stone", "Dan Wu", ""}},
		{name: "amount asc", sort: api.SortAmountAsc, want: []string{"", "Dan Wu", "bob stone", "Ana Lopez", "Cléo Martin"}},
		{name: "name asc ignores case and accents", sort: api.SortNameAsc, want: []string{"", "Ana Lopez", "bob stone", "Cléo Martin", "Dan Wu"}},
		{name: "name desc", sort: api.SortNameDesc, want: []string{"Dan Wu", "Cléo Martin", "bob stone", "Ana Lopez", ""}},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			got := QueryClaims(records, api.ClaimQuery{Sort: tt.sort})
			ms.Equal(tt.want, names(got.Page))

			again := QueryClaims(records, api.ClaimQuery{Sort: tt.sort})
			ms.Equal(names(got.Page), names(again.Page), "sorting must be deterministic")
		})
	}

	ms.Equal("Ana Lopez", records[0].ClientName, "input must not be reordered")
}

func (ms *ModelSuite) TestQueryClaims_SortIsStable() {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := Claims{
		ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "first", 100, at),
		ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "second", 100, at),
		ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "third", 100, at),
	}
	for _, sort := range []api.ClaimSort{api.SortNewest, api.SortOldest, api.SortAmountAsc, api.SortAmountDesc} {
		got := QueryClaims(records, api.ClaimQuery{Sort: sort})
		ms.Equal([]string{"first", "second", "third"}, names(got.Page), string(sort))
	}
}

func (ms *ModelSuite) TestQueryClaims_Pagination() {
	records := CreateClaimFixtures(FixturesConfig{NumberOfClaims: 23}).Claims

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantFirst string
	}{
		{name: "first page", page: 0, pageSize: 10, wantLen: 10, wantFirst: "client 00"},
		{name: "last partial page", page: 2, pageSize: 10, wantLen: 3, wantFirst: "client 20"},
		{name: "past the end", page: 3, pageSize: 10, wantLen: 0},
		{name: "far past the end", page: 1000, pageSize: 10, wantLen: 0},
		{name: "page whose offset overflows", page: 1 << 62, pageSize: 4, wantLen: 0},
		{name: "largest page", page: math.MaxInt, pageSize: 10, wantLen: 0},
		{name: "negative page is first", page: -1, pageSize: 5, wantLen: 5, wantFirst: "client 00"},
		{name: "default size", page: 0, pageSize: 0, wantLen: domain.Env.QueryDefaultPageSize, wantFirst: "client 00"},
		{name: "size is capped", page: 0, pageSize: 10000, wantLen: domain.MinInt(23, domain.Env.QueryMaxPageSize), wantFirst: "client 00"},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			q := api.ClaimQuery{Sort: api.SortOldest, Page: tt.page, PageSize: tt.pageSize}
			got := QueryClaims(records, q)

			ms.Len(got.Page, tt.wantLen)
			ms.Equal(23, got.TotalCount, "pagination must not change the total")
			ms.LessOrEqual(len(got.Page), q.Limit(domain.Env.QueryDefaultPageSize, domain.Env.QueryMaxPageSize))
			ms.NotNil(got.Page)
			if tt.wantLen > 0 {
				ms.Equal(tt.wantFirst, got.Page[0].ClientName)
			}
		})
	}
}

func (ms *ModelSuite) TestQueryClaims_ReturnedFirstProperty() {
	records := CreateClaimFixtures(FixturesConfig{NumberOfClaims: 30}).Claims
	for i := range records {
		if i%4 == 0 {
			records[i].Status = api.ClaimStatusReturnedForReview
		}
	}

	for _, sort := range []api.ClaimSort{api.SortNewest, api.SortOldest} {
		got := QueryClaims(records, api.ClaimQuery{Sort: sort, PageSize: 50})
		seenOther := false
		for _, c := range got.Page {
			if c.Status != api.ClaimStatusReturnedForReview {
				seenOther = true
				continue
			}
			ms.False(seenOther, "returned claim after another claim with sort %s", sort)
		}
	}
}

func (ms *ModelSuite) TestCountByStatus() {
	counts := CountByStatus(queryClaimFixtures())
	ms.Equal(2, counts[api.ClaimStatusPendingMedical])
	ms.Equal(2, counts[api.ClaimStatusReturnedForReview])
	ms.Equal(1, counts[api.ClaimStatusPendingCoordination])
	ms.Equal(0, counts[api.ClaimStatusApprovedFinal])
}

func (ms *ModelSuite) TestConvertQueryResult() {
	records := CreateClaimFixtures(FixturesConfig{NumberOfClaims: 7}).Claims

	result := QueryClaims(records, api.ClaimQuery{Sort: api.SortAmountAsc, Page: 1, PageSize: 3})
	page := ConvertQueryResult(result)

	ms.Equal(7, page.TotalCount)
	ms.Equal(1, page.Page)
	ms.Equal(3, page.PageSize)
	ms.Len(page.Claims, 3)
	ms.Equal(400, page.Claims[0].Amount)
	ms.NotEmpty(page.Claims[0].StatusLabel)
}
