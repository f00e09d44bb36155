// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/propharvest/pkg/types"
)

// QueryOptions holds parameters for property index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against
	// property names and raw value text.
	Query string

	// Property filters by property name.
	Property string

	// Category filters by value provenance.
	Category types.Category

	// CompoundID filters by compound. Zero means all compounds.
	CompoundID int64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Property == "" && q.Category == "" && q.CompoundID == 0
}

// QueryResult is a PropertyRecord with associated compound identity.
type QueryResult struct {
	types.PropertyRecord
	CompoundName string `json:"compound_name,omitempty" yaml:"compound_name,omitempty"`
	CompoundCAS  string `json:"compound_cas,omitempty" yaml:"compound_cas,omitempty"`
}

// Retrieve queries the property index with optional full-text search
// and structured filters. Results are ranked by relevance for
// full-text queries or sorted by compound_id, property for
// structured-only queries.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.compound_id, r.property, r.category, r.match_count,
				r.parsed_values, r.sources,
				c.name, c.record_title, c.cas, records_fts.rank
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			LEFT JOIN compounds c ON r.compound_id = c.id
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.compound_id, r.property, r.category, r.match_count,
				r.parsed_values, r.sources,
				c.name, c.record_title, c.cas, 0 AS rank
			FROM records r
			LEFT JOIN compounds c ON r.compound_id = c.id
			WHERE 1=1`)
	}

	if opts.Property != "" {
		qb.WriteString(` AND r.property = ?`)
		args = append(args, opts.Property)
	}

	if opts.Category != "" {
		qb.WriteString(` AND r.category = ?`)
		args = append(args, string(opts.Category))
	}

	if opts.CompoundID != 0 {
		qb.WriteString(` AND r.compound_id = ?`)
		args = append(args, opts.CompoundID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.compound_id, r.property`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying property index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr          QueryResult
			category    string
			valuesJSON  string
			sourcesJSON sql.NullString
			name        sql.NullString
			recordTitle sql.NullString
			cas         sql.NullString
			rank        float64
		)

		if err := rows.Scan(
			&qr.CompoundID, &qr.Property, &category, &qr.MatchCount,
			&valuesJSON, &sourcesJSON,
			&name, &recordTitle, &cas, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Category = types.Category(category)

		if err := json.Unmarshal([]byte(valuesJSON), &qr.Values); err != nil {
			return nil, fmt.Errorf("decoding values for compound %d: %w", qr.CompoundID, err)
		}
		if sourcesJSON.Valid {
			json.Unmarshal([]byte(sourcesJSON.String), &qr.Sources)
		}
		if name.Valid && name.String != "" {
			qr.CompoundName = name.String
		} else if recordTitle.Valid {
			qr.CompoundName = recordTitle.String
		}
		if cas.Valid {
			qr.CompoundCAS = cas.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
