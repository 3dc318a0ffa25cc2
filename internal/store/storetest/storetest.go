// Package storetest builds migrated SQLite stores with a small fixed data
// set for tests in other packages.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayresjulia/jobly/internal/store"
)

// New returns an empty, migrated store backed by a temporary SQLite file.
func New(t testing.TB) *store.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "jobly.db")
	require.NoError(t, store.Migrate("sqlite3", dsn))

	db, err := store.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return store.New(db, bcrypt.MinCost)
}

// Fixtures records generated values from Seed.
type Fixtures struct {
	JobIDs []int // j1, j2, j3
}

func ptr[T any](v T) *T { return &v }

// Seed loads companies c1..c3, users u1..u3 (password "password1".."password3"),
// an admin (password "adminpass") and jobs j1..j3, one per company.
func Seed(t testing.TB, st *store.Store) Fixtures {
	t.Helper()
	ctx := context.Background()

	for i, h := range []string{"c1", "c2", "c3"} {
		n := i + 1
		_, err := st.CreateCompany(ctx, store.NewCompany{
			Handle:       h,
			Name:         "C" + h[1:],
			Description:  "Desc" + h[1:],
			NumEmployees: ptr(n),
			LogoURL:      ptr("http://" + h + ".img"),
		})
		require.NoError(t, err)
	}

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := st.Register(ctx, store.NewUser{
			Username:  u,
			Password:  "password" + u[1:],
			FirstName: "U" + u[1:] + "F",
			LastName:  "U" + u[1:] + "L",
			Email:     "user" + u[1:] + "@user.com",
		})
		require.NoError(t, err)
	}
	_, err := st.Register(ctx, store.NewUser{
		Username:  "admin",
		Password:  "adminpass",
		FirstName: "Ad",
		LastName:  "Min",
		Email:     "admin@user.com",
		IsAdmin:   true,
	})
	require.NoError(t, err)

	jobs := []store.NewJob{
		{Title: "j1", Salary: ptr(100), Equity: ptr("0"), CompanyHandle: "c1"},
		{Title: "j2", Salary: ptr(200), Equity: ptr("0.1"), CompanyHandle: "c2"},
		{Title: "j3", Salary: ptr(300), CompanyHandle: "c3"},
	}
	var fx Fixtures
	for _, nj := range jobs {
		j, err := st.CreateJob(ctx, nj)
		require.NoError(t, err)
		fx.JobIDs = append(fx.JobIDs, j.ID)
	}
	return fx
}
