package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// timeFormat is the canonical stored timestamp format: RFC 3339 with
// nanoseconds, always UTC. Range comparisons in search go through
// SQLite datetime() so differing fractional precision still orders
// correctly.
const timeFormat = time.RFC3339Nano

// vconRow mirrors the header table.
type vconRow struct {
	ID          int64
	UUID        string
	Version     sql.NullString
	Subject     sql.NullString
	CreatedAt   string
	UpdatedAt   string
	Extensions  sql.NullString
	MustSupport sql.NullString
	Redacted    string
	Appended    string
}

// rowSet is a fully decomposed record: the header row plus the four
// sub-collection row lists.
type rowSet struct {
	header      vconRow
	parties     []partyRow
	dialog      []dialogRow
	analysis    []analysisRow
	attachments []attachmentRow
}

// decompose flattens a record into rows, assigning each sub-entity
// its zero-based position. Missing creation/update timestamps are
// defaulted to the current time, and a missing format version to
// domain.DefaultVersion; no other field is ever defaulted. The
// defaults are written back into the record so the stored and cached
// forms agree.
func decompose(v *domain.VCon) (*rowSet, error) {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = now
	}
	if v.Version == "" {
		v.Version = domain.DefaultVersion
	}
	if v.Redacted == nil {
		v.Redacted = map[string]any{}
	}
	if v.Appended == nil {
		v.Appended = map[string]any{}
	}

	extensions, err := nullStrList(v.Extensions)
	if err != nil {
		return nil, fmt.Errorf("encoding extensions: %w", err)
	}
	mustSupport, err := nullStrList(v.MustSupport)
	if err != nil {
		return nil, fmt.Errorf("encoding must_support: %w", err)
	}
	redacted, err := json.Marshal(v.Redacted)
	if err != nil {
		return nil, fmt.Errorf("encoding redacted: %w", err)
	}
	appended, err := json.Marshal(v.Appended)
	if err != nil {
		return nil, fmt.Errorf("encoding appended: %w", err)
	}

	rs := &rowSet{
		header: vconRow{
			UUID:        v.UUID,
			Version:     nullStr(v.Version),
			Subject:     nullStr(v.Subject),
			CreatedAt:   v.CreatedAt.UTC().Format(timeFormat),
			UpdatedAt:   v.UpdatedAt.UTC().Format(timeFormat),
			Extensions:  extensions,
			MustSupport: mustSupport,
			Redacted:    string(redacted),
			Appended:    string(appended),
		},
	}

	for i, p := range v.Parties {
		rs.parties = append(rs.parties, encodeParty(i, p))
	}
	for i, d := range v.Dialog {
		row, err := encodeDialog(i, d)
		if err != nil {
			return nil, err
		}
		rs.dialog = append(rs.dialog, row)
	}
	for i, a := range v.Analysis {
		row, err := encodeAnalysis(i, a)
		if err != nil {
			return nil, err
		}
		rs.analysis = append(rs.analysis, row)
	}
	for i, a := range v.Attachments {
		rs.attachments = append(rs.attachments, encodeAttachment(i, a))
	}

	return rs, nil
}

// assemble rebuilds a record from rows. Each sub-collection is sorted
// by its stored position first, so the output ordering matches the
// original write ordering even when the store returns rows out of
// order. Empty sub-collections come back as empty slices, never nil.
func assemble(rs *rowSet) (*domain.VCon, error) {
	createdAt, err := parseTime(rs.header.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	updatedAt, err := parseTime(rs.header.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	extensions, err := strList(rs.header.Extensions)
	if err != nil {
		return nil, fmt.Errorf("decoding extensions: %w", err)
	}
	mustSupport, err := strList(rs.header.MustSupport)
	if err != nil {
		return nil, fmt.Errorf("decoding must_support: %w", err)
	}
	redacted, err := objOrEmpty(rs.header.Redacted)
	if err != nil {
		return nil, fmt.Errorf("decoding redacted: %w", err)
	}
	appended, err := objOrEmpty(rs.header.Appended)
	if err != nil {
		return nil, fmt.Errorf("decoding appended: %w", err)
	}

	v := &domain.VCon{
		UUID:        rs.header.UUID,
		Version:     strVal(rs.header.Version),
		Subject:     strVal(rs.header.Subject),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Extensions:  extensions,
		MustSupport: mustSupport,
		Redacted:    redacted,
		Appended:    appended,
		Parties:     []domain.Party{},
		Dialog:      []domain.Dialog{},
		Analysis:    []domain.Analysis{},
		Attachments: []domain.Attachment{},
	}

	sort.Slice(rs.parties, func(i, j int) bool { return rs.parties[i].Index < rs.parties[j].Index })
	for _, row := range rs.parties {
		v.Parties = append(v.Parties, decodeParty(row))
	}

	sort.Slice(rs.dialog, func(i, j int) bool { return rs.dialog[i].Index < rs.dialog[j].Index })
	for _, row := range rs.dialog {
		d, err := decodeDialog(row)
		if err != nil {
			return nil, err
		}
		v.Dialog = append(v.Dialog, d)
	}

	sort.Slice(rs.analysis, func(i, j int) bool { return rs.analysis[i].Index < rs.analysis[j].Index })
	for _, row := range rs.analysis {
		a, err := decodeAnalysis(row)
		if err != nil {
			return nil, err
		}
		v.Analysis = append(v.Analysis, a)
	}

	sort.Slice(rs.attachments, func(i, j int) bool { return rs.attachments[i].Index < rs.attachments[j].Index })
	for _, row := range rs.attachments {
		v.Attachments = append(v.Attachments, decodeAttachment(row))
	}

	return v, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func nullStrList(list []string) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func strList(n sql.NullString) ([]string, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(n.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// objOrEmpty decodes a JSON object column, defaulting to an empty map
// when the column is empty or holds null.
func objOrEmpty(s string) (map[string]any, error) {
	if s == "" || s == "null" {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}
