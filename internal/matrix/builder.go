// Package matrix turns document records into the per-client status grid.
package matrix

import (
	"github.com/Veraticus/notecheck/internal/model"
)

// Stats summarizes what the builder saw.
type Stats struct {
	Records      int
	Included     int
	Skipped      int
	Uncatalogued int
	Clients      int
}

type clientState struct {
	row     model.ClientReportRow
	authors map[string]struct{}
}

// Builder accumulates records one at a time. The zero value is not usable;
// create one with NewBuilder.
type Builder struct {
	index     map[string]*clientState
	catalogue model.Catalogue
	order     []string
	stats     Stats
}

// NewBuilder creates a builder for the given catalogue.
func NewBuilder(catalogue model.Catalogue) *Builder {
	return &Builder{
		catalogue: catalogue,
		index:     make(map[string]*clientState),
	}
}

// Add folds one record into the matrix. It reports whether the record was
// included; records whose case type is neither MCR nor CS are skipped.
func (b *Builder) Add(record model.DocumentRecord) bool {
	b.stats.Records++

	caseType := record.CaseType()
	if !caseType.IsTracked() {
		b.stats.Skipped++
		return false
	}
	b.stats.Included++

	created := record.CreatedDate.Time

	client, ok := b.index[record.ClientName]
	if !ok {
		client = &clientState{
			row: model.ClientReportRow{
				ClientName:   record.ClientName,
				CaseType:     caseType,
				EarliestDate: created,
				Statuses:     b.catalogue.Defaults(caseType),
			},
			authors: make(map[string]struct{}),
		}
		b.index[record.ClientName] = client
		b.order = append(b.order, record.ClientName)
	}

	// Undated records never set the start date.
	if !created.IsZero() && (client.row.EarliestDate.IsZero() || created.Before(client.row.EarliestDate)) {
		client.row.EarliestDate = created
	}

	if i := b.catalogue.Index(record.Name); i >= 0 {
		client.row.Statuses[i] = client.row.Statuses[i].Promote()
	} else {
		b.stats.Uncatalogued++
	}

	if record.Author == "" {
		return true
	}
	if _, seen := client.authors[record.Author]; !seen {
		client.authors[record.Author] = struct{}{}
		client.row.Authors = append(client.row.Authors, record.Author)
	}

	return true
}

// Stats returns counters for the records added so far.
func (b *Builder) Stats() Stats {
	stats := b.stats
	stats.Clients = len(b.order)
	return stats
}

// Matrix returns the grid built so far, rows in first-seen order.
func (b *Builder) Matrix() model.Matrix {
	rows := make([]model.ClientReportRow, 0, len(b.order))
	for _, name := range b.order {
		row := b.index[name].row
		row.Statuses = append([]model.DocumentStatus(nil), row.Statuses...)
		row.Authors = append([]string(nil), row.Authors...)
		rows = append(rows, row)
	}

	return model.Matrix{
		Catalogue: b.catalogue,
		Rows:      rows,
	}
}

// Build is a convenience for building a matrix from a full record set.
func Build(records []model.DocumentRecord, catalogue model.Catalogue) model.Matrix {
	b := NewBuilder(catalogue)
	for _, record := range records {
		b.Add(record)
	}
	return b.Matrix()
}
