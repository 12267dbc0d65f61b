package query

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visit struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	CreatedOn time.Time
	Patient   string
	Notes     string
	Sessions  int
	Cost      decimal.Decimal
	Covered   bool
	EndDate   *time.Time
}

var visitSchema = MustSchema("Visit",
	UUID("id", "id", func(v *visit) *uuid.UUID { return &v.ID }).AsImmutable(),
	UUID("tenantId", "tenant_id", func(v *visit) *uuid.UUID { return &v.TenantID }).AsImmutable(),
	Time("createdOn", "created_on", func(v *visit) *time.Time { return &v.CreatedOn }).AsImmutable(),
	String("patientName", "patient_name", func(v *visit) *string { return &v.Patient }).AsSearchable(),
	String("notes", "notes", func(v *visit) *string { return &v.Notes }).AsSearchable(),
	Int("sessionCount", "session_count", func(v *visit) *int { return &v.Sessions }),
	Decimal("cost", "cost", func(v *visit) *decimal.Decimal { return &v.Cost }),
	Bool("isCovered", "is_covered", func(v *visit) *bool { return &v.Covered }),
	OptionalTime("endDate", "end_date", func(v *visit) **time.Time { return &v.EndDate }),
)

var (
	tenantA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	tenantB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	base    = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func idN(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func fixtures() []visit {
	end := base.AddDate(0, 1, 0)
	return []visit{
		{ID: idN(1), TenantID: tenantA, CreatedOn: base, Patient: "Alice Moreau", Sessions: 3, Cost: decimal.RequireFromString("120.50"), Covered: true, EndDate: &end},
		{ID: idN(2), TenantID: tenantA, CreatedOn: base.Add(time.Hour), Patient: "Bob Stone", Notes: "allergic to penicillin", Sessions: 1, Cost: decimal.RequireFromString("80")},
		{ID: idN(3), TenantID: tenantA, CreatedOn: base.Add(time.Hour), Patient: "Carla Alvarez", Sessions: 5, Cost: decimal.RequireFromString("300.00"), Covered: true},
		{ID: idN(4), TenantID: tenantB, CreatedOn: base, Patient: "Alice Other", Sessions: 9, Cost: decimal.RequireFromString("10")},
		{ID: idN(5), TenantID: tenantA, CreatedOn: base.Add(-time.Hour), Patient: "dave alderman", Sessions: 3, Cost: decimal.RequireFromString("120.5")},
	}
}

func ids(items []visit) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func mustCompile(t *testing.T, p Params) *Compiled[visit] {
	t.Helper()
	c, err := Compile(visitSchema, p, 100)
	require.NoError(t, err)
	return c
}

func TestCompile_PageValidation(t *testing.T) {
	_, err := Compile(visitSchema, Params{PageNumber: 1, PageSize: 0}, 100)
	assert.Equal(t, "Page size invalid.", err.Error())

	_, err = Compile(visitSchema, Params{PageNumber: 0, PageSize: 10}, 100)
	assert.Equal(t, "Page mumber invalid.", err.Error())

	_, err = Compile(visitSchema, Params{PageNumber: 0, PageSize: 0}, 100)
	assert.Equal(t, ErrInvalidPageSize, err, "page size is checked first")

	_, err = Compile(visitSchema, Params{PageNumber: 1, PageSize: 101}, 100)
	assert.Equal(t, ErrInvalidPageSize, err)

	_, err = Compile(visitSchema, Params{PageNumber: 1, PageSize: 500}, 0)
	assert.NoError(t, err)
}

func TestCompile_PageEndMustFitInInt(t *testing.T) {
	_, err := Compile(visitSchema, Params{PageNumber: math.MaxInt, PageSize: 10}, 100)
	assert.Equal(t, ErrInvalidPageNumber, err)

	_, err = Compile(visitSchema, Params{PageNumber: 2, PageSize: math.MaxInt}, 0)
	assert.Equal(t, ErrInvalidPageNumber, err)

	c, err := Compile(visitSchema, Params{PageNumber: math.MaxInt / 10, PageSize: 10}, 100)
	require.NoError(t, err)
	assert.Positive(t, c.Offset())
	assert.Positive(t, c.Offset()+c.Limit())

	res := Resolve(fixtures(), tenantA, c)
	assert.Equal(t, int64(4), res.TotalCount)
	assert.Empty(t, res.Items)
}

func TestResolve_UncappedPageSize(t *testing.T) {
	c, err := Compile(visitSchema, Params{PageNumber: 1, PageSize: math.MaxInt}, 0)
	require.NoError(t, err)

	res := Resolve(fixtures(), tenantA, c)
	assert.Len(t, res.Items, 4)
}

func TestCompile_RejectsUnknownNames(t *testing.T) {
	_, err := Compile(visitSchema, Params{PageNumber: 1, PageSize: 10, SortField: "shoeSize"}, 100)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "shoeSize")

	_, err = Compile(visitSchema, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{{PropertyName: "ghost", Operator: OperatorEqual, Value: "x"}},
	}, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	_, err = Compile(visitSchema, Params{PageNumber: 1, PageSize: 10, SortOrder: "sideways"}, 100)
	assert.Equal(t, ErrInvalidSortOrder, err)
}

func TestCompile_TypeMismatch(t *testing.T) {
	cases := []FilterCriteria{
		{PropertyName: "sessionCount", Operator: OperatorEqual, Value: "three"},
		{PropertyName: "isCovered", Operator: OperatorEqual, Value: "1"},
		{PropertyName: "cost", Operator: OperatorGreaterThan, Value: "lots"},
		{PropertyName: "createdOn", Operator: OperatorLessThan, Value: "yesterday"},
		{PropertyName: "id", Operator: OperatorEqual, Value: "not-a-uuid"},
		{PropertyName: "sessionCount", Operator: OperatorContains, Value: "3"},
		{PropertyName: "isCovered", Operator: OperatorGreaterThan, Value: "true"},
		{PropertyName: "patientName", Operator: "Resembles", Value: "x"},
	}
	for _, fc := range cases {
		_, err := Compile(visitSchema, Params{PageNumber: 1, PageSize: 10, Filters: []FilterCriteria{fc}}, 100)
		assert.Truef(t, IsValidation(err), "%+v should be rejected, got %v", fc, err)
	}
}

func TestResolve_TenantScopingAndDefaultOrder(t *testing.T) {
	res := Resolve(fixtures(), tenantA, mustCompile(t, Params{PageNumber: 1, PageSize: 10}))

	assert.Equal(t, int64(4), res.TotalCount)
	// createdOn asc, ties (2 and 3 share a timestamp) broken by id asc
	assert.Equal(t, []uuid.UUID{idN(5), idN(1), idN(2), idN(3)}, ids(res.Items))
}

func TestResolve_Filters(t *testing.T) {
	c := mustCompile(t, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{
			{PropertyName: "Cost", Operator: "greaterorequal", Value: "120.5"},
			{PropertyName: "sessionCount", Operator: OperatorIn, Value: "3, 5"},
		},
	})
	res := Resolve(fixtures(), tenantA, c)
	assert.Equal(t, []uuid.UUID{idN(5), idN(1), idN(3)}, ids(res.Items))

	c = mustCompile(t, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{{PropertyName: "cost", Operator: OperatorEqual, Value: "120.50"}},
	})
	assert.Equal(t, int64(2), Resolve(fixtures(), tenantA, c).TotalCount, "decimal equality ignores scale")

	c = mustCompile(t, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{{PropertyName: "patientName", Operator: OperatorStartsWith, Value: "AL"}},
	})
	assert.Equal(t, []uuid.UUID{idN(1)}, ids(Resolve(fixtures(), tenantA, c).Items))

	c = mustCompile(t, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{{PropertyName: "isCovered", Operator: OperatorEqual, Value: "TRUE"}},
	})
	assert.Equal(t, []uuid.UUID{idN(1), idN(3)}, ids(Resolve(fixtures(), tenantA, c).Items))
}

func TestResolve_NullNeverMatches(t *testing.T) {
	c := mustCompile(t, Params{
		PageNumber: 1, PageSize: 10,
		Filters: []FilterCriteria{{PropertyName: "endDate", Operator: OperatorNotEqual, Value: "2000-01-01"}},
	})
	assert.Equal(t, []uuid.UUID{idN(1)}, ids(Resolve(fixtures(), tenantA, c).Items))
}

func TestResolve_FilterOrderDoesNotMatter(t *testing.T) {
	f1 := FilterCriteria{PropertyName: "sessionCount", Operator: OperatorLessThan, Value: "5"}
	f2 := FilterCriteria{PropertyName: "isCovered", Operator: OperatorEqual, Value: "false"}

	a := Resolve(fixtures(), tenantA, mustCompile(t, Params{PageNumber: 1, PageSize: 10, Filters: []FilterCriteria{f1, f2}}))
	b := Resolve(fixtures(), tenantA, mustCompile(t, Params{PageNumber: 1, PageSize: 10, Filters: []FilterCriteria{f2, f1}}))
	assert.Equal(t, a, b)
}

func TestResolve_SearchOrsAcrossSearchableFields(t *testing.T) {
	c := mustCompile(t, Params{PageNumber: 1, PageSize: 10, SearchTerm: "  PENICILLIN "})
	assert.Equal(t, []uuid.UUID{idN(2)}, ids(Resolve(fixtures(), tenantA, c).Items))

	c = mustCompile(t, Params{
		PageNumber: 1, PageSize: 10, SearchTerm: "al",
		Filters: []FilterCriteria{{PropertyName: "sessionCount", Operator: OperatorEqual, Value: "3"}},
	})
	assert.Equal(t, []uuid.UUID{idN(5), idN(1)}, ids(Resolve(fixtures(), tenantA, c).Items))
}

func TestResolve_SortNullsLastAndTieBreak(t *testing.T) {
	c := mustCompile(t, Params{PageNumber: 1, PageSize: 10, SortField: "endDate", SortOrder: "DESC"})
	assert.Equal(t, []uuid.UUID{idN(1), idN(2), idN(3), idN(5)}, ids(Resolve(fixtures(), tenantA, c).Items))

	c = mustCompile(t, Params{PageNumber: 1, PageSize: 10, SortField: "sessionCount", SortOrder: "desc"})
	assert.Equal(t, []uuid.UUID{idN(3), idN(1), idN(5), idN(2)}, ids(Resolve(fixtures(), tenantA, c).Items))
}

func TestResolve_Paging(t *testing.T) {
	items := fixtures()
	c := mustCompile(t, Params{PageNumber: 2, PageSize: 3})
	res := Resolve(items, tenantA, c)
	assert.Equal(t, int64(4), res.TotalCount)
	assert.Equal(t, []uuid.UUID{idN(3)}, ids(res.Items))

	c = mustCompile(t, Params{PageNumber: 9, PageSize: 3})
	res = Resolve(items, tenantA, c)
	assert.Equal(t, int64(4), res.TotalCount)
	assert.Empty(t, res.Items)

	// repeated calls on unchanged data page identically
	first := Resolve(items, tenantA, mustCompile(t, Params{PageNumber: 1, PageSize: 2, SortField: "sessionCount"}))
	again := Resolve(items, tenantA, mustCompile(t, Params{PageNumber: 1, PageSize: 2, SortField: "sessionCount"}))
	assert.Equal(t, ids(first.Items), ids(again.Items))
	assert.Equal(t, []uuid.UUID{idN(2), idN(1)}, ids(first.Items))
}

func TestParseFilters(t *testing.T) {
	filters, err := ParseFilters(`[{"PropertyName":"sessionCount","Operator":"Equal","Value":3},{"PropertyName":"isCovered","Operator":"Equal","Value":true}]`)
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "3", filters[0].Value)
	assert.Equal(t, "true", filters[1].Value)

	filters, err = ParseFilters("  ")
	assert.NoError(t, err)
	assert.Nil(t, filters)

	_, err = ParseFilters(`[{"PropertyName":`)
	assert.True(t, IsValidation(err))

	_, err = ParseFilters(`[{"PropertyName":"notes","Operator":"Equal","Value":{"a":1}}]`)
	assert.True(t, IsValidation(err))
}

func TestProject(t *testing.T) {
	item := fixtures()[0]
	got, err := visitSchema.Project(&item, ParseFields("PatientName, cost,patientname,,"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"patientName": "Alice Moreau",
		"cost":        decimal.RequireFromString("120.50"),
	}, got)

	_, err = visitSchema.Project(&item, []string{"patientName", "password"})
	require.Error(t, err)
	assert.Equal(t, "Unknown property 'password'.", err.Error())
}

func TestNewSchema_RequiresAuditAttributes(t *testing.T) {
	_, err := NewSchema("Broken",
		UUID("id", "id", func(v *visit) *uuid.UUID { return &v.ID }),
	)
	assert.Error(t, err)

	_, err = NewSchema("Dup",
		UUID("id", "id", func(v *visit) *uuid.UUID { return &v.ID }),
		UUID("ID", "id2", func(v *visit) *uuid.UUID { return &v.TenantID }),
	)
	assert.Error(t, err)
}
