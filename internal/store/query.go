// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/openie-runner/pkg/types"
)

// QueryOptions holds parameters for triple store queries.
type QueryOptions struct {
	// Query is an FTS4 full-text match over subject, relation and object.
	Query string

	// Subject, Relation and Object filter by exact field value.
	Subject  string
	Relation string
	Object   string

	// Source filters by source ID.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Subject == "" && q.Relation == "" && q.Object == "" && q.Source == ""
}

// QueryResult is a stored triple with its provenance.
type QueryResult struct {
	types.Record `yaml:",inline"`
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Position     int    `json:"position" yaml:"position"`
}

// Query searches the store with an optional full-text match and exact
// field filters. Results keep extraction order: by source, then position.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	if opts.Query != "" {
		qb.WriteString(
			`SELECT t.id, t.source_id, t.position, t.subject, t.relation, t.object
			FROM triples_fts
			JOIN triples t ON t.rowid = triples_fts.docid
			WHERE triples_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT t.id, t.source_id, t.position, t.subject, t.relation, t.object
			FROM triples t
			WHERE 1=1`)
	}

	for _, f := range []struct{ col, val string }{
		{"t.subject", opts.Subject},
		{"t.relation", opts.Relation},
		{"t.object", opts.Object},
		{"t.source_id", opts.Source},
	} {
		if f.val != "" {
			qb.WriteString(` AND ` + f.col + ` = ?`)
			args = append(args, f.val)
		}
	}

	qb.WriteString(` ORDER BY t.source_id, t.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying triple store: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(&qr.ID, &qr.Source, &qr.Position, &qr.Subject, &qr.Relation, &qr.Object); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// Sources lists the indexed source IDs in order.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
