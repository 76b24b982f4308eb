package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type InstanceStore struct {
	db *sql.DB
}

func NewInstanceStore(db *sql.DB) *InstanceStore {
	return &InstanceStore{db: db}
}

// instanceSelect joins an instance with its template, child, submission and
// verification. Columns must stay in step with scanInstance.
const instanceSelect = `SELECT
	ci.id, ci.template_id, ci.assigned_child_id, ci.due_date, ci.status, ci.created_at,
	t.id, t.household_id, t.title, t.description, t.points, t.recurrence, t.is_active, t.created_at,
	c.id, c.household_id, c.name, c.avatar, c.created_at,
	s.id, s.note, s.photo_url, s.submitted_at,
	v.id, v.parent_id, v.status, v.message, v.created_at
FROM chore_instances ci
JOIN chore_templates t ON t.id = ci.template_id
LEFT JOIN children c ON c.id = ci.assigned_child_id
LEFT JOIN submissions s ON s.chore_instance_id = ci.id
LEFT JOIN verifications v ON v.chore_instance_id = ci.id`

func scanInstance(sc scanner) (*model.ChoreInstance, error) {
	var (
		ci       model.ChoreInstance
		t        model.ChoreTemplate
		childRef sql.NullString
		tDesc    sql.NullString
		tActive  int

		cID, cHousehold, cName, cAvatar sql.NullString
		cCreated                        sql.NullTime

		sID, sNote, sPhoto sql.NullString
		sAt                sql.NullTime

		vID, vParent, vStatus, vMessage sql.NullString
		vAt                             sql.NullTime
	)
	err := sc.Scan(
		&ci.ID, &ci.TemplateID, &childRef, &ci.DueDate, &ci.Status, &ci.CreatedAt,
		&t.ID, &t.HouseholdID, &t.Title, &tDesc, &t.Points, &t.Recurrence, &tActive, &t.CreatedAt,
		&cID, &cHousehold, &cName, &cAvatar, &cCreated,
		&sID, &sNote, &sPhoto, &sAt,
		&vID, &vParent, &vStatus, &vMessage, &vAt,
	)
	if err != nil {
		return nil, err
	}

	ci.AssignedChildID = stringPtr(childRef)
	t.Description = stringPtr(tDesc)
	t.IsActive = tActive != 0
	ci.Template = &t

	if cID.Valid {
		ci.AssignedChild = &model.Child{
			ID:          cID.String,
			HouseholdID: cHousehold.String,
			Name:        cName.String,
			Avatar:      stringPtr(cAvatar),
			CreatedAt:   cCreated.Time,
		}
	}
	if sID.Valid {
		ci.Submission = &model.Submission{
			ID:              sID.String,
			ChoreInstanceID: ci.ID,
			Note:            stringPtr(sNote),
			PhotoURL:        stringPtr(sPhoto),
			SubmittedAt:     sAt.Time,
		}
	}
	if vID.Valid {
		ci.Verification = &model.Verification{
			ID:              vID.String,
			ChoreInstanceID: ci.ID,
			ParentID:        vParent.String,
			Status:          model.ChoreStatus(vStatus.String),
			Message:         stringPtr(vMessage),
			CreatedAt:       vAt.Time,
		}
	}
	return &ci, nil
}

func (s *InstanceStore) list(ctx context.Context, where string, args ...any) ([]model.ChoreInstance, error) {
	rows, err := s.db.QueryContext(ctx, instanceSelect+` `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	instances := []model.ChoreInstance{}
	for rows.Next() {
		ci, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, *ci)
	}
	return instances, rows.Err()
}

// GetByID returns the instance aggregate, or nil when it does not exist.
func (s *InstanceStore) GetByID(ctx context.Context, id string) (*model.ChoreInstance, error) {
	row := s.db.QueryRowContext(ctx, instanceSelect+` WHERE ci.id = ?`, id)
	ci, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return ci, nil
}

func (s *InstanceStore) ListForChild(ctx context.Context, childID, dueDate string) ([]model.ChoreInstance, error) {
	return s.list(ctx,
		`WHERE ci.assigned_child_id = ? AND ci.due_date = ? ORDER BY ci.created_at ASC, ci.rowid ASC`,
		childID, dueDate)
}

func (s *InstanceStore) ListForHousehold(ctx context.Context, householdID, dueDate string) ([]model.ChoreInstance, error) {
	return s.list(ctx,
		`WHERE t.household_id = ? AND ci.due_date = ? ORDER BY ci.created_at ASC, ci.rowid ASC`,
		householdID, dueDate)
}

// ListPending returns the household's SUBMITTED instances, oldest
// submission first.
func (s *InstanceStore) ListPending(ctx context.Context, householdID string) ([]model.ChoreInstance, error) {
	return s.list(ctx,
		`WHERE t.household_id = ? AND ci.status = 'SUBMITTED' ORDER BY s.submitted_at ASC, ci.rowid ASC`,
		householdID)
}

// Generate creates one TODO instance per active recurring template of the
// household and child for dueDate. When childID is non-nil only that child
// is considered. Existing rows are left alone. It returns the number of
// instances created.
func (s *InstanceStore) Generate(ctx context.Context, householdID string, childID *string, dueDate string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	templateIDs, err := queryIDs(ctx, tx,
		`SELECT id FROM chore_templates
		 WHERE household_id = ? AND is_active = 1 AND recurrence <> 'NONE'
		 ORDER BY created_at ASC, rowid ASC`,
		householdID)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	var childIDs []string
	if childID != nil {
		childIDs, err = queryIDs(ctx, tx,
			`SELECT id FROM children WHERE id = ? AND household_id = ?`, *childID, householdID)
	} else {
		childIDs, err = queryIDs(ctx, tx,
			`SELECT id FROM children WHERE household_id = ? ORDER BY name ASC`, householdID)
	}
	if err != nil {
		return 0, fmt.Errorf("list children: %w", err)
	}

	created := 0
	for _, tid := range templateIDs {
		for _, cid := range childIDs {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO chore_instances (id, template_id, assigned_child_id, due_date, status)
				 VALUES (?, ?, ?, ?, 'TODO')
				 ON CONFLICT(template_id, assigned_child_id, due_date) DO NOTHING`,
				newID(), tid, cid, dueDate,
			)
			if err != nil {
				return 0, fmt.Errorf("insert instance: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, fmt.Errorf("rows affected: %w", err)
			}
			created += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit generate: %w", err)
	}
	return created, nil
}

// Create inserts a single TODO instance. An existing instance for the same
// template, child and date returns ErrDuplicate.
func (s *InstanceStore) Create(ctx context.Context, templateID, childID, dueDate string) (*model.ChoreInstance, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chore_instances (id, template_id, assigned_child_id, due_date, status) VALUES (?, ?, ?, ?, 'TODO')`,
		id, templateID, childID, dueDate,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert instance: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Submit moves a TODO instance to SUBMITTED and records the submission.
// ErrStale means the instance was no longer TODO.
func (s *InstanceStore) Submit(ctx context.Context, instanceID string, note, photoURL *string) (*model.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := transition(ctx, tx, instanceID, model.ChoreTodo, model.ChoreSubmitted); err != nil {
		return nil, err
	}

	sub := model.Submission{ID: newID(), ChoreInstanceID: instanceID, Note: note, PhotoURL: photoURL}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, chore_instance_id, note, photo_url) VALUES (?, ?, ?, ?)`,
		sub.ID, instanceID, nullString(note), nullString(photoURL),
	)
	if isUniqueViolation(err) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT submitted_at FROM submissions WHERE id = ?`, sub.ID,
	).Scan(&sub.SubmittedAt); err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return &sub, nil
}

// Verify records a parent's decision on a SUBMITTED instance and, when the
// decision is APPROVED, credits the template's points to the assigned child.
// ErrAlreadyVerified means a verification exists; ErrStale means the
// instance was not SUBMITTED.
func (s *InstanceStore) Verify(ctx context.Context, instanceID, parentID string, status model.ChoreStatus, message *string) (*model.Verification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verifications WHERE chore_instance_id = ?`, instanceID,
	).Scan(&n); err != nil {
		return nil, fmt.Errorf("check verification: %w", err)
	}
	if n > 0 {
		return nil, ErrAlreadyVerified
	}

	if err := transition(ctx, tx, instanceID, model.ChoreSubmitted, status); err != nil {
		return nil, err
	}

	v := model.Verification{ID: newID(), ChoreInstanceID: instanceID, ParentID: parentID, Status: status, Message: message}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO verifications (id, chore_instance_id, parent_id, status, message) VALUES (?, ?, ?, ?, ?)`,
		v.ID, instanceID, parentID, string(status), nullString(message),
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyVerified
	}
	if err != nil {
		return nil, fmt.Errorf("insert verification: %w", err)
	}

	if status == model.ChoreApproved {
		var childID sql.NullString
		var points int
		var title string
		err := tx.QueryRowContext(ctx,
			`SELECT ci.assigned_child_id, t.points, t.title
			 FROM chore_instances ci JOIN chore_templates t ON t.id = ci.template_id
			 WHERE ci.id = ?`,
			instanceID,
		).Scan(&childID, &points, &title)
		if err != nil {
			return nil, fmt.Errorf("get instance reward: %w", err)
		}
		// Unassigned instances have nobody to credit.
		if childID.Valid {
			ref := instanceID
			if err := insertTransaction(ctx, tx, childID.String, points, model.PointsEarned, title, &ref, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM verifications WHERE id = ?`, v.ID,
	).Scan(&v.CreatedAt); err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit verification: %w", err)
	}
	return &v, nil
}

// transition applies a status change only if the instance is still in the
// expected state.
func transition(ctx context.Context, tx *sql.Tx, instanceID string, from, to model.ChoreStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE chore_instances SET status = ? WHERE id = ? AND status = ?`,
		string(to), instanceID, string(from),
	)
	if err != nil {
		return fmt.Errorf("update instance status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrStale
	}
	return nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
