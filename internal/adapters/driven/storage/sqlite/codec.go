package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// Row types mirror the table columns one to one. Optional columns use
// sql.Null* so that NULL stays distinct from a zero value; the decode
// side includes a field in the output only when the column is
// non-NULL (and non-empty for text), so a field omitted on write
// round-trips to an omitted field on read.

type partyRow struct {
	Index        int
	Tel          sql.NullString
	SIP          sql.NullString
	STIR         sql.NullString
	Mailto       sql.NullString
	Name         sql.NullString
	DID          sql.NullString
	UUID         sql.NullString
	Validation   sql.NullString
	JCard        sql.NullString
	GMLPos       sql.NullString
	CivicAddress sql.NullString
	Timezone     sql.NullString
}

type dialogRow struct {
	Index       int
	Type        sql.NullString
	Start       sql.NullString
	Duration    sql.NullFloat64
	Parties     sql.NullString
	Originator  sql.NullInt64
	MediaType   sql.NullString
	Filename    sql.NullString
	Body        sql.NullString
	Encoding    sql.NullString
	URL         sql.NullString
	ContentHash sql.NullString
	Disposition sql.NullString
	SessionID   sql.NullString
	Application sql.NullString
	MessageID   sql.NullString
}

type analysisRow struct {
	Index         int
	Type          sql.NullString
	DialogIndices sql.NullString
	MediaType     sql.NullString
	Filename      sql.NullString
	Vendor        sql.NullString
	Product       sql.NullString
	Schema        sql.NullString
	Body          sql.NullString
	Encoding      sql.NullString
	URL           sql.NullString
	ContentHash   sql.NullString
}

type attachmentRow struct {
	Index       int
	Type        sql.NullString
	Start       sql.NullString
	Party       sql.NullInt64
	Dialog      sql.NullInt64
	MimeType    sql.NullString
	Filename    sql.NullString
	Body        sql.NullString
	Encoding    sql.NullString
	URL         sql.NullString
	ContentHash sql.NullString
}

// encodeParty copies each present field into its column. It does not
// invent defaults.
func encodeParty(idx int, p domain.Party) partyRow {
	return partyRow{
		Index:        idx,
		Tel:          nullStr(p.Tel),
		SIP:          nullStr(p.SIP),
		STIR:         nullStr(p.STIR),
		Mailto:       nullStr(p.Mailto),
		Name:         nullStr(p.Name),
		DID:          nullStr(p.DID),
		UUID:         nullStr(p.UUID),
		Validation:   nullStr(p.Validation),
		JCard:        nullRaw(p.JCard),
		GMLPos:       nullStr(p.GMLPos),
		CivicAddress: nullRaw(p.CivicAddress),
		Timezone:     nullStr(p.Timezone),
	}
}

// decodeParty reconstructs a party, including only columns that are
// set.
func decodeParty(r partyRow) domain.Party {
	return domain.Party{
		Tel:          strVal(r.Tel),
		SIP:          strVal(r.SIP),
		STIR:         strVal(r.STIR),
		Mailto:       strVal(r.Mailto),
		Name:         strVal(r.Name),
		DID:          strVal(r.DID),
		UUID:         strVal(r.UUID),
		Validation:   strVal(r.Validation),
		JCard:        rawVal(r.JCard),
		GMLPos:       strVal(r.GMLPos),
		CivicAddress: rawVal(r.CivicAddress),
		Timezone:     strVal(r.Timezone),
	}
}

func encodeDialog(idx int, d domain.Dialog) (dialogRow, error) {
	parties, err := nullIntList(d.Parties)
	if err != nil {
		return dialogRow{}, fmt.Errorf("encoding dialog parties: %w", err)
	}

	return dialogRow{
		Index:       idx,
		Type:        nullStr(d.Type),
		Start:       nullStr(d.Start),
		Duration:    nullFloat(d.Duration),
		Parties:     parties,
		Originator:  nullInt(d.Originator),
		MediaType:   nullStr(d.MediaType),
		Filename:    nullStr(d.Filename),
		Body:        nullStr(d.Body),
		Encoding:    nullStr(d.Encoding),
		URL:         nullStr(d.URL),
		ContentHash: nullStr(d.ContentHash),
		Disposition: nullStr(d.Disposition),
		SessionID:   nullStr(d.SessionID),
		Application: nullStr(d.Application),
		MessageID:   nullStr(d.MessageID),
	}, nil
}

// decodeDialog reconstructs a dialog entry. A missing type is a hard
// error. Duration uses the column NULL check, not truthiness, so a
// zero-second entry survives the round trip.
func decodeDialog(r dialogRow) (domain.Dialog, error) {
	if strVal(r.Type) == "" {
		return domain.Dialog{}, fmt.Errorf("dialog entry %d: %w: missing type", r.Index, domain.ErrMalformedRow)
	}

	parties, err := intList(r.Parties)
	if err != nil {
		return domain.Dialog{}, fmt.Errorf("dialog entry %d: decoding parties: %w", r.Index, err)
	}

	return domain.Dialog{
		Type:        r.Type.String,
		Start:       strVal(r.Start),
		Duration:    floatPtr(r.Duration),
		Parties:     parties,
		Originator:  intPtr(r.Originator),
		MediaType:   strVal(r.MediaType),
		Filename:    strVal(r.Filename),
		Body:        strVal(r.Body),
		Encoding:    strVal(r.Encoding),
		URL:         strVal(r.URL),
		ContentHash: strVal(r.ContentHash),
		Disposition: strVal(r.Disposition),
		SessionID:   strVal(r.SessionID),
		Application: strVal(r.Application),
		MessageID:   strVal(r.MessageID),
	}, nil
}

func encodeAnalysis(idx int, a domain.Analysis) (analysisRow, error) {
	refs, err := nullIntList(a.Dialog)
	if err != nil {
		return analysisRow{}, fmt.Errorf("encoding analysis dialog references: %w", err)
	}

	return analysisRow{
		Index:         idx,
		Type:          nullStr(a.Type),
		DialogIndices: refs,
		MediaType:     nullStr(a.MediaType),
		Filename:      nullStr(a.Filename),
		Vendor:        nullStr(a.Vendor),
		Product:       nullStr(a.Product),
		Schema:        nullStr(a.Schema),
		Body:          nullStr(a.Body),
		Encoding:      nullStr(a.Encoding),
		URL:           nullStr(a.URL),
		ContentHash:   nullStr(a.ContentHash),
	}, nil
}

// decodeAnalysis reconstructs an analysis entry. Missing type or
// vendor is a hard error. The dialog reference list is included only
// when non-empty; its singleton-to-scalar JSON shape is handled by
// domain.DialogRefs, not here.
func decodeAnalysis(r analysisRow) (domain.Analysis, error) {
	if strVal(r.Type) == "" {
		return domain.Analysis{}, fmt.Errorf("analysis entry %d: %w: missing type", r.Index, domain.ErrMalformedRow)
	}
	if strVal(r.Vendor) == "" {
		return domain.Analysis{}, fmt.Errorf("analysis entry %d: %w: missing vendor", r.Index, domain.ErrMalformedRow)
	}

	refs, err := intList(r.DialogIndices)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("analysis entry %d: decoding dialog references: %w", r.Index, err)
	}

	return domain.Analysis{
		Type:        r.Type.String,
		Dialog:      domain.DialogRefs(refs),
		MediaType:   strVal(r.MediaType),
		Filename:    strVal(r.Filename),
		Vendor:      r.Vendor.String,
		Product:     strVal(r.Product),
		Schema:      strVal(r.Schema),
		Body:        strVal(r.Body),
		Encoding:    strVal(r.Encoding),
		URL:         strVal(r.URL),
		ContentHash: strVal(r.ContentHash),
	}, nil
}

func encodeAttachment(idx int, a domain.Attachment) attachmentRow {
	return attachmentRow{
		Index:       idx,
		Type:        nullStr(a.Type),
		Start:       nullStr(a.Start),
		Party:       nullInt(a.Party),
		Dialog:      nullInt(a.Dialog),
		MimeType:    nullStr(a.MediaType),
		Filename:    nullStr(a.Filename),
		Body:        nullStr(a.Body),
		Encoding:    nullStr(a.Encoding),
		URL:         nullStr(a.URL),
		ContentHash: nullStr(a.ContentHash),
	}
}

func decodeAttachment(r attachmentRow) domain.Attachment {
	return domain.Attachment{
		Type:        strVal(r.Type),
		Start:       strVal(r.Start),
		Party:       intPtr(r.Party),
		Dialog:      intPtr(r.Dialog),
		MediaType:   strVal(r.MimeType),
		Filename:    strVal(r.Filename),
		Body:        strVal(r.Body),
		Encoding:    strVal(r.Encoding),
		URL:         strVal(r.URL),
		ContentHash: strVal(r.ContentHash),
	}
}

// ==================== Null Helpers ====================

// nullStr maps the empty string to NULL. Empty and absent are one
// state for optional text fields.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRaw(r json.RawMessage) sql.NullString {
	return sql.NullString{String: string(r), Valid: len(r) > 0}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// nullIntList marshals an int list to a JSON text column, NULL when
// the list is empty.
func nullIntList(list []int) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func strVal(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func rawVal(n sql.NullString) json.RawMessage {
	if !n.Valid || n.String == "" {
		return nil
	}
	return json.RawMessage(n.String)
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}

func intList(n sql.NullString) ([]int, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	var list []int
	if err := json.Unmarshal([]byte(n.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}
