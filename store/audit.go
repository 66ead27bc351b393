package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/model"
)

// AddAudit records a transition in the same transaction that applied it.
func (t *Tx) AddAudit(ctx context.Context, entry *model.AuditEntry) error {
	stmt := `
		INSERT INTO audit_log (actor_id, action, entity, entity_id, detail)
		VALUES (?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, stmt,
		entry.ActorID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.Detail,
	)
	return err
}

func (s *Store) ListAuditEntries(ctx context.Context, find *model.FindAuditEntry) ([]*model.AuditEntry, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ActorID; v != nil {
		where, args = append(where, "actor_id = ?"), append(args, *v)
	}
	if v := find.Entity; v != nil {
		where, args = append(where, "entity = ?"), append(args, *v)
	}
	if v := find.EntityID; v != nil {
		where, args = append(where, "entity_id = ?"), append(args, *v)
	}

	query := `
		SELECT id, actor_id, action, entity, entity_id, detail, created_ts
		FROM audit_log
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.AuditEntry, 0)
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.Entity,
			&entry.EntityID,
			&entry.Detail,
			&entry.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
