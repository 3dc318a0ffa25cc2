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

// JobSummary is a job as listed under its company.
type JobSummary struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Salary *int    `json:"salary"`
	Equity *string `json:"equity"`
}

// Job is a posting with the handle of the company offering it.
type Job struct {
	JobSummary
	CompanyHandle string `json:"companyHandle"`
}

// JobDetail is a job with its company expanded.
type JobDetail struct {
	JobSummary
	Company Company `json:"company"`
}

// NewJob is the input for CreateJob. Equity is a decimal string in [0, 1].
type NewJob struct {
	Title         string  `json:"title" validate:"required,min=1"`
	Salary        *int    `json:"salary" validate:"omitnil,min=0"`
	Equity        *string `json:"equity" validate:"omitnil,equity"`
	CompanyHandle string  `json:"companyHandle" validate:"required,min=1,max=25"`
}

// JobPatch holds the job fields an update may change.
// The id and company are immutable.
type JobPatch struct {
	Title  *string `json:"title" validate:"omitnil,min=1"`
	Salary *int    `json:"salary" validate:"omitnil,min=0"`
	Equity *string `json:"equity" validate:"omitnil,equity"`
}

func (p JobPatch) fields() []sqlutil.Field {
	var f []sqlutil.Field
	f = sqlutil.AppendIf(f, "title", p.Title)
	f = sqlutil.AppendIf(f, "salary", p.Salary)
	f = sqlutil.AppendIf(f, "equity", p.Equity)
	return f
}

// JobFilter narrows FindAllJobs.
type JobFilter struct {
	Title     string
	MinSalary *int
	HasEquity bool // only jobs with equity > 0
}

const jobCols = `id, title, salary, equity, company_handle`

func scanJobSummary(row scanner) (JobSummary, error) {
	var (
		j      JobSummary
		salary sql.NullInt64
		equity sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Title, &salary, &equity); err != nil {
		return JobSummary{}, err
	}
	j.Salary = intPtr(salary)
	j.Equity = strPtr(equity)
	return j, nil
}

func scanJob(row scanner) (Job, error) {
	var (
		j      Job
		salary sql.NullInt64
		equity sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Title, &salary, &equity, &j.CompanyHandle); err != nil {
		return Job{}, err
	}
	j.Salary = intPtr(salary)
	j.Equity = strPtr(equity)
	return j, nil
}

// CreateJob inserts a job for an existing company.
func (s *Store) CreateJob(ctx context.Context, nj NewJob) (Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (title, salary, equity, company_handle)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+jobCols,
		nj.Title, nj.Salary, nj.Equity, nj.CompanyHandle,
	))
	if err != nil {
		err = mapError(err)
		switch {
		case errors.Is(err, ErrForeignKeyViolation):
			return Job{}, apperr.Wrap(http.StatusBadRequest, "No company: "+nj.CompanyHandle, err)
		case errors.Is(err, ErrCheckViolation):
			return Job{}, apperr.Wrap(http.StatusBadRequest, "Invalid job data", err)
		}
		return Job{}, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

// FindAllJobs lists jobs matching f, ordered by title then id.
func (s *Store) FindAllJobs(ctx context.Context, f JobFilter) ([]Job, error) {
	var w sqlutil.Where
	if f.Title != "" {
		w.Add(`lower(title) LIKE $%d`, "%"+strings.ToLower(f.Title)+"%")
	}
	if f.MinSalary != nil {
		w.Add(`salary >= $%d`, *f.MinSalary)
	}
	q := `SELECT ` + jobCols + ` FROM jobs` + w.String()
	if f.HasEquity {
		if len(w.Args()) == 0 {
			q += ` WHERE equity > 0`
		} else {
			q += ` AND equity > 0`
		}
	}

	rows, err := s.db.QueryContext(ctx, q+` ORDER BY title, id`, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", mapError(err))
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetJob returns a job with its company.
func (s *Store) GetJob(ctx context.Context, id int) (JobDetail, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobCols+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return JobDetail{}, s.notFound(err, "No job: %v", id)
	}
	c, err := scanCompany(s.db.QueryRowContext(ctx,
		`SELECT `+companyCols+` FROM companies WHERE handle = $1`, j.CompanyHandle))
	if err != nil {
		return JobDetail{}, fmt.Errorf("company of job %d: %w", id, mapError(err))
	}
	return JobDetail{JobSummary: j.JobSummary, Company: c}, nil
}

// UpdateJob applies p to the job with the given id.
func (s *Store) UpdateJob(ctx context.Context, id int, p JobPatch) (Job, error) {
	upd, err := sqlutil.PartialUpdate(p.fields(), nil)
	if err != nil {
		return Job{}, err
	}
	q := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`,
		upd.SetCols, upd.Next(), jobCols)

	j, err := scanJob(s.db.QueryRowContext(ctx, q, append(upd.Values, id)...))
	if err != nil {
		if errors.Is(mapError(err), ErrCheckViolation) {
			return Job{}, apperr.Wrap(http.StatusBadRequest, "Invalid job data", err)
		}
		return Job{}, s.notFound(err, "No job: %v", id)
	}
	return j, nil
}

// RemoveJob deletes a job and, by cascade, its applications.
func (s *Store) RemoveJob(ctx context.Context, id int) error {
	return s.deleteOne(ctx, `DELETE FROM jobs WHERE id = $1`, id, "No job: %v")
}
