package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vconstore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vconstore/internal/core/domain"
	"github.com/custodia-labs/vconstore/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VConStore = (*Store)(nil)

// Store is the SQLite-backed vCon store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vconstore/data/vcons.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vconstore", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vcons.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys drive the header-delete cascade
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Save ====================

// SaveVCon upserts the header row keyed by uuid, resolves the
// store-generated id, then upserts every sub-collection row tagged
// with that id and its position. The sub-collection passes are not
// atomic with each other; the operation fails outright only when the
// header upsert fails or yields no identifier.
func (s *Store) SaveVCon(ctx context.Context, vcon *domain.VCon) error {
	if vcon == nil || vcon.UUID == "" {
		return domain.ErrMissingUUID
	}

	rs, err := decompose(vcon)
	if err != nil {
		return fmt.Errorf("decomposing vCon: %w", err)
	}

	h := rs.header
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vcons (uuid, vcon_version, subject, created_at, updated_at, extensions, must_support, redacted, appended)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			vcon_version = excluded.vcon_version,
			subject = excluded.subject,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			extensions = excluded.extensions,
			must_support = excluded.must_support,
			redacted = excluded.redacted,
			appended = excluded.appended
	`, h.UUID, h.Version, h.Subject, h.CreatedAt, h.UpdatedAt,
		h.Extensions, h.MustSupport, h.Redacted, h.Appended)
	if err != nil {
		return fmt.Errorf("saving vCon header: %w", err)
	}

	var vconID int64
	row := s.db.QueryRowContext(ctx, "SELECT id FROM vcons WHERE uuid = ?", h.UUID)
	if err := row.Scan(&vconID); err != nil {
		return fmt.Errorf("resolving vCon id: %w", err)
	}

	if err := s.saveParties(ctx, vconID, rs.parties); err != nil {
		return err
	}
	if err := s.saveDialog(ctx, vconID, rs.dialog); err != nil {
		return err
	}
	if err := s.saveAnalysis(ctx, vconID, rs.analysis); err != nil {
		return err
	}
	if err := s.saveAttachments(ctx, vconID, rs.attachments); err != nil {
		return err
	}

	return nil
}

// saveParties upserts party rows in one pass, then prunes positions
// beyond the new collection length so a shrinking re-save does not
// leave stale rows behind.
func (s *Store) saveParties(ctx context.Context, vconID int64, rows []partyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning parties transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parties (vcon_id, party_index, tel, sip, stir, mailto, name, did, uuid, validation, jcard, gmlpos, civicaddress, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vcon_id, party_index) DO UPDATE SET
			tel = excluded.tel,
			sip = excluded.sip,
			stir = excluded.stir,
			mailto = excluded.mailto,
			name = excluded.name,
			did = excluded.did,
			uuid = excluded.uuid,
			validation = excluded.validation,
			jcard = excluded.jcard,
			gmlpos = excluded.gmlpos,
			civicaddress = excluded.civicaddress,
			timezone = excluded.timezone
	`)
	if err != nil {
		return fmt.Errorf("preparing parties statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, vconID, r.Index, r.Tel, r.SIP, r.STIR,
			r.Mailto, r.Name, r.DID, r.UUID, r.Validation, r.JCard,
			r.GMLPos, r.CivicAddress, r.Timezone); err != nil {
			return fmt.Errorf("saving party %d: %w", r.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM parties WHERE vcon_id = ? AND party_index >= ?", vconID, len(rows)); err != nil {
		return fmt.Errorf("pruning parties: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing parties: %w", err)
	}
	return nil
}

func (s *Store) saveDialog(ctx context.Context, vconID int64, rows []dialogRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning dialog transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dialog (vcon_id, dialog_index, type, start_time, duration_seconds, parties, originator, mediatype, filename, body, encoding, url, content_hash, disposition, session_id, application, message_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vcon_id, dialog_index) DO UPDATE SET
			type = excluded.type,
			start_time = excluded.start_time,
			duration_seconds = excluded.duration_seconds,
			parties = excluded.parties,
			originator = excluded.originator,
			mediatype = excluded.mediatype,
			filename = excluded.filename,
			body = excluded.body,
			encoding = excluded.encoding,
			url = excluded.url,
			content_hash = excluded.content_hash,
			disposition = excluded.disposition,
			session_id = excluded.session_id,
			application = excluded.application,
			message_id = excluded.message_id
	`)
	if err != nil {
		return fmt.Errorf("preparing dialog statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, vconID, r.Index, r.Type, r.Start,
			r.Duration, r.Parties, r.Originator, r.MediaType, r.Filename,
			r.Body, r.Encoding, r.URL, r.ContentHash, r.Disposition,
			r.SessionID, r.Application, r.MessageID); err != nil {
			return fmt.Errorf("saving dialog entry %d: %w", r.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM dialog WHERE vcon_id = ? AND dialog_index >= ?", vconID, len(rows)); err != nil {
		return fmt.Errorf("pruning dialog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dialog: %w", err)
	}
	return nil
}

func (s *Store) saveAnalysis(ctx context.Context, vconID int64, rows []analysisRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning analysis transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis (vcon_id, analysis_index, type, dialog_indices, mediatype, filename, vendor, product, schema, body, encoding, url, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vcon_id, analysis_index) DO UPDATE SET
			type = excluded.type,
			dialog_indices = excluded.dialog_indices,
			mediatype = excluded.mediatype,
			filename = excluded.filename,
			vendor = excluded.vendor,
			product = excluded.product,
			schema = excluded.schema,
			body = excluded.body,
			encoding = excluded.encoding,
			url = excluded.url,
			content_hash = excluded.content_hash
	`)
	if err != nil {
		return fmt.Errorf("preparing analysis statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, vconID, r.Index, r.Type,
			r.DialogIndices, r.MediaType, r.Filename, r.Vendor, r.Product,
			r.Schema, r.Body, r.Encoding, r.URL, r.ContentHash); err != nil {
			return fmt.Errorf("saving analysis entry %d: %w", r.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM analysis WHERE vcon_id = ? AND analysis_index >= ?", vconID, len(rows)); err != nil {
		return fmt.Errorf("pruning analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing analysis: %w", err)
	}
	return nil
}

func (s *Store) saveAttachments(ctx context.Context, vconID int64, rows []attachmentRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning attachments transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attachments (vcon_id, attachment_index, type, start_time, party, dialog, mimetype, filename, body, encoding, url, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vcon_id, attachment_index) DO UPDATE SET
			type = excluded.type,
			start_time = excluded.start_time,
			party = excluded.party,
			dialog = excluded.dialog,
			mimetype = excluded.mimetype,
			filename = excluded.filename,
			body = excluded.body,
			encoding = excluded.encoding,
			url = excluded.url,
			content_hash = excluded.content_hash
	`)
	if err != nil {
		return fmt.Errorf("preparing attachments statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, vconID, r.Index, r.Type, r.Start,
			r.Party, r.Dialog, r.MimeType, r.Filename, r.Body, r.Encoding,
			r.URL, r.ContentHash); err != nil {
			return fmt.Errorf("saving attachment %d: %w", r.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attachments WHERE vcon_id = ? AND attachment_index >= ?", vconID, len(rows)); err != nil {
		return fmt.Errorf("pruning attachments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing attachments: %w", err)
	}
	return nil
}

// ==================== Get ====================

// GetVCon retrieves a record by uuid. Returns domain.ErrNotFound when
// no header row exists.
func (s *Store) GetVCon(ctx context.Context, uuid string) (*domain.VCon, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, vcon_version, subject, created_at, updated_at, extensions, must_support, redacted, appended
		FROM vcons WHERE uuid = ?
	`, uuid)

	var h vconRow
	if err := row.Scan(&h.ID, &h.UUID, &h.Version, &h.Subject, &h.CreatedAt,
		&h.UpdatedAt, &h.Extensions, &h.MustSupport, &h.Redacted, &h.Appended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning vCon header: %w", err)
	}

	rs := &rowSet{header: h}
	var err error
	if rs.parties, err = s.getParties(ctx, h.ID); err != nil {
		return nil, err
	}
	if rs.dialog, err = s.getDialog(ctx, h.ID); err != nil {
		return nil, err
	}
	if rs.analysis, err = s.getAnalysis(ctx, h.ID); err != nil {
		return nil, err
	}
	if rs.attachments, err = s.getAttachments(ctx, h.ID); err != nil {
		return nil, err
	}

	return assemble(rs)
}

func (s *Store) getParties(ctx context.Context, vconID int64) ([]partyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT party_index, tel, sip, stir, mailto, name, did, uuid, validation, jcard, gmlpos, civicaddress, timezone
		FROM parties WHERE vcon_id = ?
		ORDER BY party_index
	`, vconID)
	if err != nil {
		return nil, fmt.Errorf("querying parties: %w", err)
	}
	defer rows.Close()

	var result []partyRow
	for rows.Next() {
		var r partyRow
		if err := rows.Scan(&r.Index, &r.Tel, &r.SIP, &r.STIR, &r.Mailto,
			&r.Name, &r.DID, &r.UUID, &r.Validation, &r.JCard, &r.GMLPos,
			&r.CivicAddress, &r.Timezone); err != nil {
			return nil, fmt.Errorf("scanning party: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating parties: %w", err)
	}
	return result, nil
}

func (s *Store) getDialog(ctx context.Context, vconID int64) ([]dialogRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dialog_index, type, start_time, duration_seconds, parties, originator, mediatype, filename, body, encoding, url, content_hash, disposition, session_id, application, message_id
		FROM dialog WHERE vcon_id = ?
		ORDER BY dialog_index
	`, vconID)
	if err != nil {
		return nil, fmt.Errorf("querying dialog: %w", err)
	}
	defer rows.Close()

	var result []dialogRow
	for rows.Next() {
		var r dialogRow
		if err := rows.Scan(&r.Index, &r.Type, &r.Start, &r.Duration,
			&r.Parties, &r.Originator, &r.MediaType, &r.Filename, &r.Body,
			&r.Encoding, &r.URL, &r.ContentHash, &r.Disposition,
			&r.SessionID, &r.Application, &r.MessageID); err != nil {
			return nil, fmt.Errorf("scanning dialog entry: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dialog: %w", err)
	}
	return result, nil
}

func (s *Store) getAnalysis(ctx context.Context, vconID int64) ([]analysisRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT analysis_index, type, dialog_indices, mediatype, filename, vendor, product, schema, body, encoding, url, content_hash
		FROM analysis WHERE vcon_id = ?
		ORDER BY analysis_index
	`, vconID)
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	defer rows.Close()

	var result []analysisRow
	for rows.Next() {
		var r analysisRow
		if err := rows.Scan(&r.Index, &r.Type, &r.DialogIndices,
			&r.MediaType, &r.Filename, &r.Vendor, &r.Product, &r.Schema,
			&r.Body, &r.Encoding, &r.URL, &r.ContentHash); err != nil {
			return nil, fmt.Errorf("scanning analysis entry: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analysis: %w", err)
	}
	return result, nil
}

func (s *Store) getAttachments(ctx context.Context, vconID int64) ([]attachmentRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attachment_index, type, start_time, party, dialog, mimetype, filename, body, encoding, url, content_hash
		FROM attachments WHERE vcon_id = ?
		ORDER BY attachment_index
	`, vconID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	var result []attachmentRow
	for rows.Next() {
		var r attachmentRow
		if err := rows.Scan(&r.Index, &r.Type, &r.Start, &r.Party,
			&r.Dialog, &r.MimeType, &r.Filename, &r.Body, &r.Encoding,
			&r.URL, &r.ContentHash); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return result, nil
}

// ==================== Delete ====================

// DeleteVCon removes the header row; dependent rows go with it via
// the schema's ON DELETE CASCADE. Deleting an absent uuid is a no-op.
func (s *Store) DeleteVCon(ctx context.Context, uuid string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vcons WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("deleting vCon: %w", err)
	}
	return nil
}

// ==================== Search ====================

// FindUUIDs returns the uuids of records matching the query, header
// table only. Criteria combine with AND; an empty query matches all.
func (s *Store) FindUUIDs(ctx context.Context, query domain.SearchQuery) ([]string, error) {
	sqlQuery := "SELECT uuid FROM vcons"
	var conds []string
	var args []any

	if query.Subject != "" {
		conds = append(conds, "LOWER(subject) LIKE '%' || LOWER(?) || '%'")
		args = append(args, query.Subject)
	}
	if !query.CreatedAfter.IsZero() {
		conds = append(conds, "datetime(created_at) >= datetime(?)")
		args = append(args, query.CreatedAfter.UTC().Format(timeFormat))
	}
	if !query.CreatedBefore.IsZero() {
		conds = append(conds, "datetime(created_at) <= datetime(?)")
		args = append(args, query.CreatedBefore.UTC().Format(timeFormat))
	}
	if len(conds) > 0 {
		sqlQuery += " WHERE " + strings.Join(conds, " AND ")
	}
	sqlQuery += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vCons: %w", err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, fmt.Errorf("scanning uuid: %w", err)
		}
		uuids = append(uuids, uuid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uuids: %w", err)
	}
	return uuids, nil
}
