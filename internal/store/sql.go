package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/spigell/resume-ranker/internal/ranking"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id          TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resumes (
		id             TEXT PRIMARY KEY,
		job_id         TEXT NOT NULL REFERENCES jobs(id),
		seq            INTEGER NOT NULL,
		file_name      TEXT NOT NULL,
		status         TEXT NOT NULL,
		error_message  TEXT NOT NULL DEFAULT '',
		raw_text       TEXT NOT NULL DEFAULT '',
		cleaned_text   TEXT NOT NULL DEFAULT '',
		profile        TEXT NOT NULL DEFAULT '{}',
		rule_score     INTEGER NOT NULL DEFAULT 0,
		final_score    INTEGER NOT NULL DEFAULT 0,
		breakdown      TEXT NOT NULL DEFAULT '{}',
		matched_skills TEXT NOT NULL DEFAULT '[]',
		missing_skills TEXT NOT NULL DEFAULT '[]',
		rationale      TEXT NOT NULL DEFAULT '{}',
		uploaded_at    TEXT NOT NULL,
		processed_at   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS resumes_job_seq ON resumes (job_id, seq)`,
}

const resumeColumns = `id, job_id, seq, file_name, status, error_message, raw_text, cleaned_text,
	profile, rule_score, final_score, breakdown, matched_skills, missing_skills, rationale,
	uploaded_at, processed_at`

// SQL stores records in SQLite (modernc) or PostgreSQL (pgx) through database/sql.
// Structured fields are kept as JSON text and timestamps as RFC3339 text.
type SQL struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens the database and creates the schema when missing.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: dsn is required", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open db: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite: single writer
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}

	s := &SQL{db: db, driver: driver}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: init schema: %w", driver, err)
		}
	}
	return s, nil
}

// rebind rewrites '?' placeholders to the '$n' form expected by PostgreSQL.
func (s *SQL) rebind(query string) string {
	if s.driver != DriverPgx {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) CreateJob(ctx context.Context, job *ranking.Job) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO jobs (id, description, status, created_at) VALUES (?, ?, ?, ?)`),
		job.ID, job.Description, string(job.Status), formatTime(job.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *SQL) GetJob(ctx context.Context, id string) (*ranking.Job, error) {
	var (
		job             ranking.Job
		status, created string
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, description, status, created_at FROM jobs WHERE id = ?`), id,
	).Scan(&job.ID, &job.Description, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select job: %w", err)
	}

	if job.Status, err = ranking.ParseJobStatus(status); err != nil {
		return nil, err
	}
	if job.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *SQL) UpdateJobStatus(ctx context.Context, id string, status ranking.JobStatus) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE jobs SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return expectRow(res, "job", id)
}

func (s *SQL) AddResume(ctx context.Context, r *ranking.Resume) error {
	return s.AddResumes(ctx, []*ranking.Resume{r})
}

// AddResumes inserts the batch in one transaction.
func (s *SQL) AddResumes(ctx context.Context, rs []*ranking.Resume) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	insert := s.rebind(`INSERT INTO resumes (` + resumeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	jobs := make(map[string]struct{})
	for _, r := range rs {
		if _, ok := jobs[r.JobID]; !ok {
			var one int
			err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM jobs WHERE id = ?`), r.JobID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("job %s: %w", r.JobID, ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("get job: %w", err)
			}
			jobs[r.JobID] = struct{}{}
		}

		var args []any
		args, err = resumeArgs(r)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert resume %s: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit resumes: %w", err)
	}
	return nil
}

func (s *SQL) SaveResume(ctx context.Context, r *ranking.Resume) error {
	args, err := resumeArgs(r)
	if err != nil {
		return err
	}

	// id goes last for the WHERE clause; job_id, seq and uploaded_at are immutable.
	update := []any{args[4], args[5], args[6], args[7], args[8], args[9], args[10], args[11], args[12], args[13], args[14], args[16], r.ID}
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE resumes SET
		status = ?, error_message = ?, raw_text = ?, cleaned_text = ?, profile = ?,
		rule_score = ?, final_score = ?, breakdown = ?, matched_skills = ?, missing_skills = ?,
		rationale = ?, processed_at = ?
		WHERE id = ?`), update...)
	if err != nil {
		return fmt.Errorf("update resume: %w", err)
	}
	return expectRow(res, "resume", r.ID)
}

func (s *SQL) GetResume(ctx context.Context, id string) (*ranking.Resume, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+resumeColumns+` FROM resumes WHERE id = ?`), id)
	r, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQL) ListResumes(ctx context.Context, jobID string) ([]*ranking.Resume, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+resumeColumns+` FROM resumes WHERE job_id = ? ORDER BY seq`), jobID)
	if err != nil {
		return nil, fmt.Errorf("select resumes: %w", err)
	}
	defer rows.Close()

	out := make([]*ranking.Resume, 0)
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resumes: %w", err)
	}
	return out, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*ranking.Resume, error) {
	var (
		r                                            ranking.Resume
		status, uploaded                             string
		profile, breakdown, matched, missing, reason string
		processed                                    sql.NullString
	)

	err := row.Scan(&r.ID, &r.JobID, &r.Seq, &r.FileName, &status, &r.Error, &r.RawText, &r.CleanedText,
		&profile, &r.RuleScore, &r.FinalScore, &breakdown, &matched, &missing, &reason,
		&uploaded, &processed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}

	if r.Status, err = ranking.ParseResumeStatus(status); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"profile", profile, &r.Profile},
		{"breakdown", breakdown, &r.Breakdown},
		{"matched_skills", matched, &r.MatchedSkills},
		{"missing_skills", missing, &r.MissingSkills},
		{"rationale", reason, &r.Rationale},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode resume %s %s: %w", r.ID, f.name, err)
		}
	}

	if r.UploadedAt, err = parseTime(uploaded); err != nil {
		return nil, err
	}
	if processed.Valid {
		t, err := parseTime(processed.String)
		if err != nil {
			return nil, err
		}
		r.ProcessedAt = &t
	}
	return &r, nil
}

func resumeArgs(r *ranking.Resume) ([]any, error) {
	encoded := make([]string, 0, 5)
	for _, v := range []any{r.Profile, r.Breakdown, r.MatchedSkills, r.MissingSkills, r.Rationale} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode resume %s: %w", r.ID, err)
		}
		encoded = append(encoded, string(b))
	}

	var processed sql.NullString
	if r.ProcessedAt != nil {
		processed = sql.NullString{String: formatTime(*r.ProcessedAt), Valid: true}
	}

	return []any{
		r.ID, r.JobID, r.Seq, r.FileName, string(r.Status), r.Error, r.RawText, r.CleanedText,
		encoded[0], r.RuleScore, r.FinalScore, encoded[1], encoded[2], encoded[3], encoded[4],
		formatTime(r.UploadedAt), processed,
	}, nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
