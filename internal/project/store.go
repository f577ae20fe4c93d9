package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
)

// ErrNotFound is returned when a project or business id does not exist.
var ErrNotFound = errors.New("project not found")

// Store persists projects and each business's active selection.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Business is a merchant context grouping projects.
type Business struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ActiveProjectID string `json:"activeProjectId,omitempty"`
}

// Create inserts the project, assigning an id and timestamps. When the
// business has no active selection yet, the new project becomes it.
func (s *Store) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.LastModified = now
	p.Normalize()

	costsJSON, productionJSON, err := marshalDerived(p)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (
			id, business_id, name, costs_json, production_json,
			strategy, target_net, competitor_price, confidence,
			created_at, last_modified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.BusinessID, p.Name, costsJSON, productionJSON,
		string(p.Strategy), p.TargetNet, p.CompetitorPrice, string(p.Confidence),
		formatTime(p.CreatedAt), formatTime(p.LastModified))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE businesses
		SET active_project_id = ?
		WHERE id = ? AND active_project_id IS NULL
	`, p.ID, p.BusinessID)
	if err != nil {
		return fmt.Errorf("set initial active project: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("set initial active project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create transaction: %w", err)
	}
	return nil
}

// Get fetches one project by id.
func (s *Store) Get(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, name, costs_json, production_json,
		       strategy, target_net, competitor_price, confidence,
		       created_at, last_modified
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// List returns a business's projects in creation order.
func (s *Store) List(ctx context.Context, businessID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, name, costs_json, production_json,
		       strategy, target_net, competitor_price, confidence,
		       created_at, last_modified
		FROM projects
		WHERE business_id = ?
		ORDER BY created_at ASC, id ASC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update rewrites every editable field and stamps LastModified.
func (s *Store) Update(ctx context.Context, p *Project) error {
	p.LastModified = time.Now().UTC()
	p.Normalize()

	costsJSON, productionJSON, err := marshalDerived(p)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET
			name = ?,
			costs_json = ?,
			production_json = ?,
			strategy = ?,
			target_net = ?,
			competitor_price = ?,
			confidence = ?,
			last_modified = ?
		WHERE id = ?
	`, p.Name, costsJSON, productionJSON, string(p.Strategy),
		p.TargetNet, p.CompetitorPrice, string(p.Confidence), formatTime(p.LastModified), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project. If it was the business's active selection, the
// first remaining project in creation order takes its place; when none
// remain the selection is cleared so no dangling reference survives.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var businessID string
	err = tx.QueryRowContext(ctx, `SELECT business_id FROM projects WHERE id = ?`, id).Scan(&businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("look up project business: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	var active sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT active_project_id FROM businesses WHERE id = ?`, businessID).Scan(&active)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("look up active project: %w", err)
	}

	if active.Valid && active.String == id {
		var next sql.NullString
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM projects
			WHERE business_id = ?
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		`, businessID).Scan(&next)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("pick fallback project: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE businesses SET active_project_id = ? WHERE id = ?
		`, nullable(next), businessID); err != nil {
			return fmt.Errorf("redirect active project: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

// Activate marks a project as the business's active selection. The project
// must belong to the business.
func (s *Store) Activate(ctx context.Context, businessID, projectID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT business_id FROM projects WHERE id = ?`, projectID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("look up project: %w", err)
	}
	if owner != businessID {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE businesses SET active_project_id = ? WHERE id = ?
	`, projectID, businessID)
	if err != nil {
		return fmt.Errorf("activate project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate project: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Active returns the business's active project, or ok=false when the
// business has no selection.
func (s *Store) Active(ctx context.Context, businessID string) (Project, bool, error) {
	var active sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT active_project_id FROM businesses WHERE id = ?
	`, businessID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, false, ErrNotFound
	}
	if err != nil {
		return Project{}, false, fmt.Errorf("query active project: %w", err)
	}
	if !active.Valid {
		return Project{}, false, nil
	}

	p, err := s.Get(ctx, active.String)
	if err != nil {
		return Project{}, false, err
	}
	return p, true, nil
}

// Businesses lists every merchant context.
func (s *Store) Businesses(ctx context.Context) ([]Business, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(active_project_id, '')
		FROM businesses
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query businesses: %w", err)
	}
	defer rows.Close()

	businesses := make([]Business, 0)
	for rows.Next() {
		var b Business
		if err := rows.Scan(&b.ID, &b.Name, &b.ActiveProjectID); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate businesses: %w", err)
	}
	return businesses, nil
}

// EnsureBusiness inserts the business if it does not exist yet.
func (s *Store) EnsureBusiness(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name)
	if err != nil {
		return fmt.Errorf("ensure business: %w", err)
	}
	return nil
}

func marshalDerived(p *Project) (costsJSON, productionJSON []byte, err error) {
	costsJSON, err = json.Marshal(p.Costs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal costs: %w", err)
	}
	productionJSON, err = json.Marshal(p.Production)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal production config: %w", err)
	}
	return costsJSON, productionJSON, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p              Project
		costsJSON      []byte
		productionJSON []byte
		strategy       string
		confidence     string
		createdAt      string
		lastModified   string
	)
	err := row.Scan(&p.ID, &p.BusinessID, &p.Name, &costsJSON, &productionJSON,
		&strategy, &p.TargetNet, &p.CompetitorPrice, &confidence,
		&createdAt, &lastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("scan project: %w", err)
	}

	if err := json.Unmarshal(costsJSON, &p.Costs); err != nil {
		return Project{}, fmt.Errorf("unmarshal costs: %w", err)
	}
	if err := json.Unmarshal(productionJSON, &p.Production); err != nil {
		return Project{}, fmt.Errorf("unmarshal production config: %w", err)
	}
	p.Strategy = pricing.Strategy(strategy)
	p.Confidence = Confidence(confidence)
	p.CreatedAt = parseTime(createdAt)
	p.LastModified = parseTime(lastModified)

	// Stored rows predating a schema default may be sparse.
	if p.Costs == nil {
		p.Costs = []hpp.CostEntry{}
	}
	return p, nil
}

func nullable(v sql.NullString) any {
	if v.Valid {
		return v.String
	}
	return nil
}

// Timestamps are stored as RFC 3339 text so lexicographic ordering matches
// chronological ordering in SQL. The fractional second is fixed-width:
// RFC3339Nano drops trailing zeros, which would make ".5Z" sort after ".51Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
