package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Query narrows a List call. Zero-value fields are ignored.
type Query struct {
	Kind       models.Kind
	Type       string
	ProjectID  string
	EmployeeID string
}

const recordColumns = `id, kind, type, title, fields, project_id, employee_id, attachments, checklist, created_at, updated_at`

// Insert persists a new record within a transaction.
func (db *DB) Insert(rec *models.Record) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.Kind), rec.Type, rec.Title,
		marshalFields(rec.Fields), rec.ProjectID, rec.EmployeeID,
		marshalList(rec.Attachments), marshalChecklist(rec.Checklist),
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert record: %w", err)
	}
	return tx.Commit()
}

// Update fully replaces the stored row for rec.ID.
func (db *DB) Update(rec *models.Record) error {
	res, err := db.conn.Exec(`
		UPDATE records SET
			type = ?, title = ?, fields = ?, project_id = ?, employee_id = ?,
			attachments = ?, checklist = ?, updated_at = ?
		WHERE id = ?
	`, rec.Type, rec.Title, marshalFields(rec.Fields), rec.ProjectID, rec.EmployeeID,
		marshalList(rec.Attachments), marshalChecklist(rec.Checklist),
		rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("store: update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Get returns the record with the given id.
func (db *DB) Get(id string) (*models.Record, error) {
	row := db.conn.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get record: %w", err)
	}
	return rec, nil
}

// Delete permanently removes a record. Deleting an employee cascades to
// every training record that references it, within the same transaction.
func (db *DB) Delete(id string) error {
	rec, err := db.Get(id)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if rec.Kind == models.KindEmployee {
		if _, err := tx.Exec(`DELETE FROM records WHERE kind = ? AND employee_id = ?`,
			string(models.KindTraining), id); err != nil {
			return fmt.Errorf("store: cascade training delete: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete record: %w", err)
	}
	return tx.Commit()
}

// List returns records matching q, most recently created first.
func (db *DB) List(q Query) ([]models.Record, error) {
	where := `1=1`
	args := []any{}
	if q.Kind != "" {
		where += ` AND kind = ?`
		args = append(args, string(q.Kind))
	}
	if q.Type != "" {
		where += ` AND type = ?`
		args = append(args, q.Type)
	}
	if q.ProjectID != "" {
		where += ` AND project_id = ?`
		args = append(args, q.ProjectID)
	}
	if q.EmployeeID != "" {
		where += ` AND employee_id = ?`
		args = append(args, q.EmployeeID)
	}

	rows, err := db.conn.Query(
		`SELECT `+recordColumns+` FROM records WHERE `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var rec models.Record
	var kind, fields, attachments, checklist string
	if err := s.Scan(&rec.ID, &kind, &rec.Type, &rec.Title, &fields,
		&rec.ProjectID, &rec.EmployeeID, &attachments, &checklist,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Kind = models.Kind(kind)
	rec.Fields = map[string]string{}
	_ = json.Unmarshal([]byte(fields), &rec.Fields)
	rec.Attachments = []string{}
	_ = json.Unmarshal([]byte(attachments), &rec.Attachments)
	rec.Checklist = map[string]bool{}
	_ = json.Unmarshal([]byte(checklist), &rec.Checklist)
	return &rec, nil
}

func marshalFields(m map[string]string) string {
	if m == nil {
		m = map[string]string{}
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func marshalList(l []string) string {
	if l == nil {
		l = []string{}
	}
	b, _ := json.Marshal(l)
	return string(b)
}

func marshalChecklist(m map[string]bool) string {
	if m == nil {
		m = map[string]bool{}
	}
	b, _ := json.Marshal(m)
	return string(b)
}
