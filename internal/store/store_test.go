package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/store"
	"github.com/ayresjulia/jobly/internal/store/storetest"
)

func ptr[T any](v T) *T { return &v }

func seeded(t *testing.T) (*store.Store, storetest.Fixtures) {
	t.Helper()
	st := storetest.New(t)
	return st, storetest.Seed(t, st)
}

func TestAuthenticate(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	u, err := st.Authenticate(ctx, "u1", "password1")
	require.NoError(t, err)
	assert.Equal(t, store.User{
		Username: "u1", FirstName: "U1F", LastName: "U1L", Email: "user1@user.com",
	}, u)

	_, err = st.Authenticate(ctx, "u1", "wrong")
	assert.True(t, apperr.IsUnauthorized(err))

	_, err = st.Authenticate(ctx, "nope", "password1")
	assert.True(t, apperr.IsUnauthorized(err))
}

func TestRegister(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	nu := store.NewUser{
		Username: "new", Password: "password", FirstName: "Test",
		LastName: "Tester", Email: "test@test.com", IsAdmin: true,
	}
	u, err := st.Register(ctx, nu)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = st.Authenticate(ctx, "new", "password")
	require.NoError(t, err)

	_, err = st.Register(ctx, nu)
	require.True(t, apperr.IsBadRequest(err))
	assert.Contains(t, err.Error(), "Duplicate username: new")
}

func TestFindAllUsers(t *testing.T) {
	st, _ := seeded(t)
	users, err := st.FindAllUsers(context.Background())
	require.NoError(t, err)

	var names []string
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"admin", "u1", "u2", "u3"}, names)
}

func TestGetUser(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	u, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.Username)
	assert.Empty(t, u.Applications)
	assert.NotNil(t, u.Applications)

	require.NoError(t, st.Apply(ctx, "u1", fx.JobIDs[1]))
	require.NoError(t, st.Apply(ctx, "u1", fx.JobIDs[0]))
	u, err = st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{fx.JobIDs[0], fx.JobIDs[1]}, u.Applications)

	_, err = st.GetUser(ctx, "nope")
	require.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "No user: nope")
}

func TestUpdateUser(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	t.Run("partial", func(t *testing.T) {
		u, err := st.UpdateUser(ctx, "u1", store.UserPatch{
			FirstName: ptr("NewF"),
			Email:     ptr("new@email.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, store.User{
			Username: "u1", FirstName: "NewF", LastName: "U1L", Email: "new@email.com",
		}, u)
	})

	t.Run("password is rehashed", func(t *testing.T) {
		_, err := st.UpdateUser(ctx, "u2", store.UserPatch{Password: ptr("brandnew")})
		require.NoError(t, err)
		_, err = st.Authenticate(ctx, "u2", "brandnew")
		require.NoError(t, err)
		_, err = st.Authenticate(ctx, "u2", "password2")
		assert.True(t, apperr.IsUnauthorized(err))
	})

	t.Run("admin flag", func(t *testing.T) {
		u, err := st.UpdateUser(ctx, "u3", store.UserPatch{IsAdmin: ptr(true)})
		require.NoError(t, err)
		assert.True(t, u.IsAdmin)
	})

	t.Run("no data", func(t *testing.T) {
		_, err := st.UpdateUser(ctx, "u1", store.UserPatch{})
		require.True(t, apperr.IsBadRequest(err))
		assert.Equal(t, "No data", err.Error())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := st.UpdateUser(ctx, "nope", store.UserPatch{FirstName: ptr("x")})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestRemoveUser(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	require.NoError(t, st.Apply(ctx, "u1", fx.JobIDs[0]))
	require.NoError(t, st.RemoveUser(ctx, "u1"))

	_, err := st.GetUser(ctx, "u1")
	assert.True(t, apperr.IsNotFound(err))

	err = st.RemoveUser(ctx, "u1")
	assert.True(t, apperr.IsNotFound(err))
}

func TestApply(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	require.NoError(t, st.Apply(ctx, "u1", fx.JobIDs[0]))

	err := st.Apply(ctx, "u1", fx.JobIDs[0])
	assert.True(t, apperr.IsBadRequest(err), "duplicate application")

	err = st.Apply(ctx, "u1", 0)
	require.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "No job: 0")

	err = st.Apply(ctx, "nope", fx.JobIDs[0])
	require.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "No user: nope")
}

func TestCreateCompany(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	nc := store.NewCompany{
		Handle: "new", Name: "New", Description: "New Description",
		NumEmployees: ptr(1), LogoURL: ptr("http://new.img"),
	}
	c, err := st.CreateCompany(ctx, nc)
	require.NoError(t, err)
	assert.Equal(t, store.Company{
		Handle: "new", Name: "New", Description: "New Description",
		NumEmployees: ptr(1), LogoURL: ptr("http://new.img"),
	}, c)

	_, err = st.CreateCompany(ctx, nc)
	assert.True(t, apperr.IsBadRequest(err))

	c, err = st.CreateCompany(ctx, store.NewCompany{Handle: "bare", Name: "Bare", Description: "d"})
	require.NoError(t, err)
	assert.Nil(t, c.NumEmployees)
	assert.Nil(t, c.LogoURL)
}

func TestFindAllCompanies(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	handles := func(cs []store.Company) []string {
		out := []string{}
		for _, c := range cs {
			out = append(out, c.Handle)
		}
		return out
	}

	tests := []struct {
		name   string
		filter store.CompanyFilter
		want   []string
	}{
		{"no filter", store.CompanyFilter{}, []string{"c1", "c2", "c3"}},
		{"name case-insensitive", store.CompanyFilter{NameLike: "c"}, []string{"c1", "c2", "c3"}},
		{"name", store.CompanyFilter{NameLike: "2"}, []string{"c2"}},
		{"min", store.CompanyFilter{MinEmployees: ptr(2)}, []string{"c2", "c3"}},
		{"max", store.CompanyFilter{MaxEmployees: ptr(2)}, []string{"c1", "c2"}},
		{"range", store.CompanyFilter{MinEmployees: ptr(2), MaxEmployees: ptr(2)}, []string{"c2"}},
		{"all", store.CompanyFilter{NameLike: "1", MinEmployees: ptr(1), MaxEmployees: ptr(3)}, []string{"c1"}},
		{"nothing", store.CompanyFilter{NameLike: "zzz"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, err := st.FindAllCompanies(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, handles(cs))
		})
	}

	_, err := st.FindAllCompanies(ctx, store.CompanyFilter{MinEmployees: ptr(3), MaxEmployees: ptr(1)})
	assert.True(t, apperr.IsBadRequest(err))
}

func TestGetCompany(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	c, err := st.GetCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "C1", c.Name)
	assert.Equal(t, []store.JobSummary{
		{ID: fx.JobIDs[0], Title: "j1", Salary: ptr(100), Equity: ptr("0")},
	}, c.Jobs)

	_, err = st.GetCompany(ctx, "nope")
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateCompany(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	c, err := st.UpdateCompany(ctx, "c1", store.CompanyPatch{
		Name:         ptr("New"),
		NumEmployees: ptr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, store.Company{
		Handle: "c1", Name: "New", Description: "Desc1",
		NumEmployees: ptr(10), LogoURL: ptr("http://c1.img"),
	}, c)

	_, err = st.UpdateCompany(ctx, "c1", store.CompanyPatch{Name: ptr("C2")})
	assert.True(t, apperr.IsBadRequest(err), "name taken")

	_, err = st.UpdateCompany(ctx, "c1", store.CompanyPatch{})
	assert.True(t, apperr.IsBadRequest(err))

	_, err = st.UpdateCompany(ctx, "nope", store.CompanyPatch{Name: ptr("x")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRemoveCompany(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	require.NoError(t, st.RemoveCompany(ctx, "c1"))
	_, err := st.GetJob(ctx, fx.JobIDs[0])
	assert.True(t, apperr.IsNotFound(err), "jobs cascade")

	assert.True(t, apperr.IsNotFound(st.RemoveCompany(ctx, "c1")))
}

func TestCreateJob(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	j, err := st.CreateJob(ctx, store.NewJob{
		Title: "new", Salary: ptr(10), Equity: ptr("0.2"), CompanyHandle: "c1",
	})
	require.NoError(t, err)
	assert.NotZero(t, j.ID)
	assert.Equal(t, "c1", j.CompanyHandle)
	assert.Equal(t, ptr("0.2"), j.Equity)

	_, err = st.CreateJob(ctx, store.NewJob{Title: "x", CompanyHandle: "nope"})
	require.True(t, apperr.IsBadRequest(err))
	assert.Contains(t, err.Error(), "No company: nope")
}

func TestFindAllJobs(t *testing.T) {
	st, _ := seeded(t)
	ctx := context.Background()

	titles := func(js []store.Job) []string {
		out := []string{}
		for _, j := range js {
			out = append(out, j.Title)
		}
		return out
	}

	tests := []struct {
		name   string
		filter store.JobFilter
		want   []string
	}{
		{"no filter", store.JobFilter{}, []string{"j1", "j2", "j3"}},
		{"title", store.JobFilter{Title: "J1"}, []string{"j1"}},
		{"min salary", store.JobFilter{MinSalary: ptr(150)}, []string{"j2", "j3"}},
		{"equity", store.JobFilter{HasEquity: true}, []string{"j2"}},
		{"salary and equity", store.JobFilter{MinSalary: ptr(250), HasEquity: true}, []string{}},
		{"title and equity", store.JobFilter{Title: "j", HasEquity: true}, []string{"j2"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			js, err := st.FindAllJobs(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(js))
		})
	}
}

func TestGetJob(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	j, err := st.GetJob(ctx, fx.JobIDs[2])
	require.NoError(t, err)
	assert.Equal(t, "j3", j.Title)
	assert.Nil(t, j.Equity)
	assert.Equal(t, "c3", j.Company.Handle)
	assert.Equal(t, ptr(3), j.Company.NumEmployees)

	_, err = st.GetJob(ctx, 0)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateJob(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	j, err := st.UpdateJob(ctx, fx.JobIDs[0], store.JobPatch{Title: ptr("New"), Salary: ptr(500)})
	require.NoError(t, err)
	assert.Equal(t, "New", j.Title)
	assert.Equal(t, ptr(500), j.Salary)
	assert.Equal(t, ptr("0"), j.Equity)
	assert.Equal(t, "c1", j.CompanyHandle)

	_, err = st.UpdateJob(ctx, 0, store.JobPatch{Title: ptr("x")})
	assert.True(t, apperr.IsNotFound(err))

	_, err = st.UpdateJob(ctx, fx.JobIDs[0], store.JobPatch{})
	assert.True(t, apperr.IsBadRequest(err))
}

func TestRemoveJob(t *testing.T) {
	st, fx := seeded(t)
	ctx := context.Background()

	require.NoError(t, st.RemoveJob(ctx, fx.JobIDs[0]))
	assert.True(t, apperr.IsNotFound(st.RemoveJob(ctx, fx.JobIDs[0])))
}
