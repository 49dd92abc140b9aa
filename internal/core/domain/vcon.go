package domain

import (
	"encoding/json"
	"time"
)

// DefaultVersion is the vCon format version written when a record
// does not carry one.
const DefaultVersion = "0.3.0"

// VCon is a conversation record: a header plus four ordered
// sub-collections. Optional string fields use the empty string as
// "absent"; numeric fields that may legitimately be zero use
// pointers so absence stays representable.
type VCon struct {
	// UUID is the globally unique record identifier. Required.
	UUID string `json:"uuid"`

	// Version is the vCon format version (the "vcon" field).
	Version string `json:"vcon,omitempty"`

	// Subject is an optional free-text summary of the conversation.
	Subject string `json:"subject,omitempty"`

	// CreatedAt is when the record was created. Defaults to the
	// current time (UTC) on save when zero.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	// Extensions lists vCon extensions present in the record.
	Extensions []string `json:"extensions,omitempty"`

	// MustSupport lists extensions a consumer must understand.
	MustSupport []string `json:"must_support,omitempty"`

	// Redacted marks this record as a redacted form of another.
	// Defaults to an empty object.
	Redacted map[string]any `json:"redacted"`

	// Appended marks this record as an amended form of another.
	// Defaults to an empty object.
	Appended map[string]any `json:"appended"`

	// Parties, Dialog, Analysis and Attachments are the ordered
	// sub-collections. An assembled record always carries non-nil
	// slices, empty when the collection is empty.
	Parties     []Party      `json:"parties"`
	Dialog      []Dialog     `json:"dialog"`
	Analysis    []Analysis   `json:"analysis"`
	Attachments []Attachment `json:"attachments"`
}

// Validate checks the record is persistable. Only the uuid is
// required at the header level; sub-entity requirements are enforced
// at the row decode boundary.
func (v *VCon) Validate() error {
	if v == nil || v.UUID == "" {
		return ErrMissingUUID
	}
	return nil
}

// Party identifies a participant in the conversation.
// Every field is optional; an omitted field must stay omitted across
// a persistence round trip.
type Party struct {
	Tel          string          `json:"tel,omitempty"`
	SIP          string          `json:"sip,omitempty"`
	STIR         string          `json:"stir,omitempty"`
	Mailto       string          `json:"mailto,omitempty"`
	Name         string          `json:"name,omitempty"`
	DID          string          `json:"did,omitempty"`
	UUID         string          `json:"uuid,omitempty"`
	Validation   string          `json:"validation,omitempty"`
	JCard        json.RawMessage `json:"jcard,omitempty"`
	GMLPos       string          `json:"gmlpos,omitempty"`
	CivicAddress json.RawMessage `json:"civicaddress,omitempty"`
	Timezone     string          `json:"timezone,omitempty"`
}

// Dialog is one entry of the conversation dialog.
// Type is required. Duration uses a pointer because zero seconds is a
// legitimate, distinct-from-absent value.
type Dialog struct {
	Type        string   `json:"type"`
	Start       string   `json:"start,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Parties     []int    `json:"parties,omitempty"`
	Originator  *int     `json:"originator,omitempty"`
	MediaType   string   `json:"mediatype,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	Body        string   `json:"body,omitempty"`
	Encoding    string   `json:"encoding,omitempty"`
	URL         string   `json:"url,omitempty"`
	ContentHash string   `json:"content_hash,omitempty"`
	Disposition string   `json:"disposition,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Application string   `json:"application,omitempty"`
	MessageID   string   `json:"message_id,omitempty"`
}

// Analysis is one analysis entry. Type and Vendor are required.
type Analysis struct {
	Type        string     `json:"type"`
	Dialog      DialogRefs `json:"dialog,omitempty"`
	MediaType   string     `json:"mediatype,omitempty"`
	Filename    string     `json:"filename,omitempty"`
	Vendor      string     `json:"vendor"`
	Product     string     `json:"product,omitempty"`
	Schema      string     `json:"schema,omitempty"`
	Body        string     `json:"body,omitempty"`
	Encoding    string     `json:"encoding,omitempty"`
	URL         string     `json:"url,omitempty"`
	ContentHash string     `json:"content_hash,omitempty"`
}

// Attachment is one attachment entry. Every field is optional.
type Attachment struct {
	Type        string `json:"type,omitempty"`
	Start       string `json:"start,omitempty"`
	Party       *int   `json:"party,omitempty"`
	Dialog      *int   `json:"dialog,omitempty"`
	MediaType   string `json:"mediatype,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Body        string `json:"body,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	URL         string `json:"url,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

// DialogRefs is the analysis dialog-reference list. It is always a
// list in memory and in the store, but its JSON form follows the vCon
// convention: a bare integer when the list holds exactly one element,
// an array otherwise.
type DialogRefs []int

// MarshalJSON emits a scalar for a singleton list and an array
// otherwise.
func (d DialogRefs) MarshalJSON() ([]byte, error) {
	if len(d) == 1 {
		return json.Marshal(d[0])
	}
	return json.Marshal([]int(d))
}

// UnmarshalJSON accepts either a bare integer or an array of
// integers.
func (d *DialogRefs) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*d = DialogRefs{single}
		return nil
	}
	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*d = DialogRefs(list)
	return nil
}
