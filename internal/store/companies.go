package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/sqlutil"
)

// Company is a hiring company.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company with its open jobs.
type CompanyDetail struct {
	Company
	Jobs []JobSummary `json:"jobs"`
}

// NewCompany is the input for CreateCompany.
type NewCompany struct {
	Handle       string  `json:"handle" validate:"required,min=1,max=25,lowercase"`
	Name         string  `json:"name" validate:"required,min=1"`
	Description  string  `json:"description" validate:"required"`
	NumEmployees *int    `json:"numEmployees" validate:"omitnil,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitnil,url"`
}

// CompanyPatch holds the company fields an update may change.
// The handle is immutable.
type CompanyPatch struct {
	Name         *string `json:"name" validate:"omitnil,min=1"`
	Description  *string `json:"description" validate:"omitnil"`
	NumEmployees *int    `json:"numEmployees" validate:"omitnil,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitnil,url"`
}

var companyColumns = map[string]string{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

func (p CompanyPatch) fields() []sqlutil.Field {
	var f []sqlutil.Field
	f = sqlutil.AppendIf(f, "name", p.Name)
	f = sqlutil.AppendIf(f, "description", p.Description)
	f = sqlutil.AppendIf(f, "numEmployees", p.NumEmployees)
	f = sqlutil.AppendIf(f, "logoUrl", p.LogoURL)
	return f
}

// CompanyFilter narrows FindAllCompanies. Zero values mean no constraint.
type CompanyFilter struct {
	NameLike     string
	MinEmployees *int
	MaxEmployees *int
}

const companyCols = `handle, name, description, num_employees, logo_url`

func scanCompany(row scanner) (Company, error) {
	var (
		c    Company
		n    sql.NullInt64
		logo sql.NullString
	)
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &n, &logo); err != nil {
		return Company{}, err
	}
	c.NumEmployees = intPtr(n)
	c.LogoURL = strPtr(logo)
	return c, nil
}

// CreateCompany inserts a company. Handles and names must be unique.
func (s *Store) CreateCompany(ctx context.Context, nc NewCompany) (Company, error) {
	c, err := scanCompany(s.db.QueryRowContext(ctx,
		`INSERT INTO companies (handle, name, description, num_employees, logo_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+companyCols,
		nc.Handle, nc.Name, nc.Description, nc.NumEmployees, nc.LogoURL,
	))
	if err != nil {
		err = mapError(err)
		switch {
		case errors.Is(err, ErrDuplicateKey):
			return Company{}, apperr.Wrap(http.StatusBadRequest, "Duplicate company: "+nc.Handle, err)
		case errors.Is(err, ErrCheckViolation):
			return Company{}, apperr.Wrap(http.StatusBadRequest, "Invalid company data", err)
		}
		return Company{}, fmt.Errorf("create company %s: %w", nc.Handle, err)
	}
	return c, nil
}

// FindAllCompanies lists companies matching f, ordered by name.
// A MinEmployees greater than MaxEmployees is a bad request.
func (s *Store) FindAllCompanies(ctx context.Context, f CompanyFilter) ([]Company, error) {
	if f.MinEmployees != nil && f.MaxEmployees != nil && *f.MinEmployees > *f.MaxEmployees {
		return nil, apperr.BadRequest("Min employees cannot be greater than max")
	}

	var w sqlutil.Where
	if f.NameLike != "" {
		w.Add(`lower(name) LIKE $%d`, "%"+strings.ToLower(f.NameLike)+"%")
	}
	if f.MinEmployees != nil {
		w.Add(`num_employees >= $%d`, *f.MinEmployees)
	}
	if f.MaxEmployees != nil {
		w.Add(`num_employees <= $%d`, *f.MaxEmployees)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+companyCols+` FROM companies`+w.String()+` ORDER BY name`, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", mapError(err))
	}
	defer rows.Close()

	out := []Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCompany returns a company with its jobs ordered by id.
func (s *Store) GetCompany(ctx context.Context, handle string) (CompanyDetail, error) {
	c, err := scanCompany(s.db.QueryRowContext(ctx,
		`SELECT `+companyCols+` FROM companies WHERE handle = $1`, handle))
	if err != nil {
		return CompanyDetail{}, s.notFound(err, "No company: %s", handle)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, salary, equity FROM jobs WHERE company_handle = $1 ORDER BY id`, handle)
	if err != nil {
		return CompanyDetail{}, fmt.Errorf("list company jobs: %w", mapError(err))
	}
	defer rows.Close()

	d := CompanyDetail{Company: c, Jobs: []JobSummary{}}
	for rows.Next() {
		j, err := scanJobSummary(rows)
		if err != nil {
			return CompanyDetail{}, fmt.Errorf("scan job: %w", err)
		}
		d.Jobs = append(d.Jobs, j)
	}
	return d, rows.Err()
}

// UpdateCompany applies p to the company identified by handle.
func (s *Store) UpdateCompany(ctx context.Context, handle string, p CompanyPatch) (Company, error) {
	upd, err := sqlutil.PartialUpdate(p.fields(), companyColumns)
	if err != nil {
		return Company{}, err
	}
	q := fmt.Sprintf(`UPDATE companies SET %s WHERE handle = $%d RETURNING %s`,
		upd.SetCols, upd.Next(), companyCols)

	c, err := scanCompany(s.db.QueryRowContext(ctx, q, append(upd.Values, handle)...))
	if err != nil {
		mapped := mapError(err)
		switch {
		case errors.Is(mapped, ErrDuplicateKey):
			return Company{}, apperr.Wrap(http.StatusBadRequest, "Duplicate company name", err)
		case errors.Is(mapped, ErrCheckViolation):
			return Company{}, apperr.Wrap(http.StatusBadRequest, "Invalid company data", err)
		}
		return Company{}, s.notFound(err, "No company: %s", handle)
	}
	return c, nil
}

// RemoveCompany deletes a company and, by cascade, its jobs.
func (s *Store) RemoveCompany(ctx context.Context, handle string) error {
	return s.deleteOne(ctx, `DELETE FROM companies WHERE handle = $1`, handle, "No company: %s")
}
