package sqlite

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// TestPartyCodec_RoundTrip tests party field presence across
// encode/decode
func TestPartyCodec_RoundTrip(t *testing.T) {
	party := domain.Party{
		Tel:   "+15551234567",
		Name:  "Alice",
		JCard: json.RawMessage(`["vcard",[["version",{},"text","4.0"]]]`),
	}

	row := encodeParty(3, party)
	assert.Equal(t, 3, row.Index)
	assert.True(t, row.Tel.Valid)
	assert.False(t, row.Mailto.Valid)
	assert.True(t, row.JCard.Valid)

	decoded := decodeParty(row)
	assert.Equal(t, party, decoded)
}

// TestPartyCodec_EmptyFieldsStayAbsent tests that unset fields map to
// NULL columns and back to unset fields
func TestPartyCodec_EmptyFieldsStayAbsent(t *testing.T) {
	row := encodeParty(0, domain.Party{Name: "Bob"})

	assert.True(t, row.Name.Valid)
	assert.False(t, row.Tel.Valid)
	assert.False(t, row.SIP.Valid)
	assert.False(t, row.CivicAddress.Valid)

	decoded := decodeParty(row)
	assert.Empty(t, decoded.Tel)
	assert.Nil(t, decoded.JCard)
}

// TestDialogCodec_RoundTrip tests a fully populated dialog entry
func TestDialogCodec_RoundTrip(t *testing.T) {
	duration := 42.5
	originator := 1
	dialog := domain.Dialog{
		Type:       "recording",
		Start:      "2025-03-14T09:26:53Z",
		Duration:   &duration,
		Parties:    []int{0, 1},
		Originator: &originator,
		MediaType:  "audio/wav",
		URL:        "https://example.com/rec.wav",
	}

	row, err := encodeDialog(0, dialog)
	require.NoError(t, err)
	assert.True(t, row.Duration.Valid)
	assert.Equal(t, "[0,1]", row.Parties.String)

	decoded, err := decodeDialog(row)
	require.NoError(t, err)
	assert.Equal(t, dialog, decoded)
}

// TestDialogCodec_ZeroDuration tests that a zero-second duration
// survives the round trip as zero, not absent
func TestDialogCodec_ZeroDuration(t *testing.T) {
	zero := 0.0
	row, err := encodeDialog(0, domain.Dialog{Type: "text", Duration: &zero})
	require.NoError(t, err)
	assert.True(t, row.Duration.Valid)

	decoded, err := decodeDialog(row)
	require.NoError(t, err)
	require.NotNil(t, decoded.Duration)
	assert.Equal(t, 0.0, *decoded.Duration)
}

// TestDialogCodec_AbsentDuration tests that a missing duration stays
// missing
func TestDialogCodec_AbsentDuration(t *testing.T) {
	row, err := encodeDialog(0, domain.Dialog{Type: "text"})
	require.NoError(t, err)
	assert.False(t, row.Duration.Valid)

	decoded, err := decodeDialog(row)
	require.NoError(t, err)
	assert.Nil(t, decoded.Duration)
}

// TestDialogCodec_MissingType tests the hard decode error for a row
// without a type
func TestDialogCodec_MissingType(t *testing.T) {
	_, err := decodeDialog(dialogRow{Index: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
	assert.Contains(t, err.Error(), "missing type")
}

// TestAnalysisCodec_RoundTrip tests analysis encode/decode including
// the dialog reference list
func TestAnalysisCodec_RoundTrip(t *testing.T) {
	analysis := domain.Analysis{
		Type:   "transcript",
		Vendor: "acme",
		Dialog: domain.DialogRefs{1, 3},
		Body:   "hello world",
	}

	row, err := encodeAnalysis(0, analysis)
	require.NoError(t, err)
	assert.Equal(t, "[1,3]", row.DialogIndices.String)

	decoded, err := decodeAnalysis(row)
	require.NoError(t, err)
	assert.Equal(t, analysis, decoded)
}

// TestAnalysisCodec_SingletonDialogRef tests that a one-element
// reference list stays a list in storage
func TestAnalysisCodec_SingletonDialogRef(t *testing.T) {
	row, err := encodeAnalysis(0, domain.Analysis{
		Type:   "summary",
		Vendor: "acme",
		Dialog: domain.DialogRefs{2},
	})
	require.NoError(t, err)
	assert.Equal(t, "[2]", row.DialogIndices.String)

	decoded, err := decodeAnalysis(row)
	require.NoError(t, err)
	assert.Equal(t, domain.DialogRefs{2}, decoded.Dialog)
}

// TestAnalysisCodec_MissingType tests the hard decode error for a row
// without a type
func TestAnalysisCodec_MissingType(t *testing.T) {
	_, err := decodeAnalysis(analysisRow{Index: 0, Vendor: nullStr("acme")})
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
}

// TestAnalysisCodec_MissingVendor tests the hard decode error for a
// row without a vendor
func TestAnalysisCodec_MissingVendor(t *testing.T) {
	_, err := decodeAnalysis(analysisRow{Index: 0, Type: nullStr("transcript")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
	assert.Contains(t, err.Error(), "missing vendor")
}

// TestAttachmentCodec_RoundTrip tests attachment encode/decode
// including the mimetype column to mediatype field rename
func TestAttachmentCodec_RoundTrip(t *testing.T) {
	party := 0
	att := domain.Attachment{
		Type:      "contract",
		Party:     &party,
		MediaType: "application/pdf",
		Filename:  "contract.pdf",
	}

	row := encodeAttachment(1, att)
	assert.Equal(t, "application/pdf", row.MimeType.String)
	assert.True(t, row.Party.Valid)
	assert.EqualValues(t, 0, row.Party.Int64)

	decoded := decodeAttachment(row)
	assert.Equal(t, att, decoded)
}

// TestNullHelpers tests the NULL mapping helpers
func TestNullHelpers(t *testing.T) {
	assert.False(t, nullStr("").Valid)
	assert.True(t, nullStr("x").Valid)

	assert.False(t, nullRaw(nil).Valid)
	assert.True(t, nullRaw(json.RawMessage(`{}`)).Valid)

	assert.False(t, nullFloat(nil).Valid)
	f := 1.5
	assert.True(t, nullFloat(&f).Valid)

	assert.False(t, nullInt(nil).Valid)
	i := 0
	assert.True(t, nullInt(&i).Valid)

	empty, err := nullIntList(nil)
	require.NoError(t, err)
	assert.False(t, empty.Valid)

	list, err := nullIntList([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", list.String)
}

// TestIntList_Invalid tests decoding of a corrupt list column
func TestIntList_Invalid(t *testing.T) {
	_, err := intList(sql.NullString{String: "not json", Valid: true})
	assert.Error(t, err)
}
