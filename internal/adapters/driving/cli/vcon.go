package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

var saveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Save a vCon record",
	Long: `Reads a vCon JSON document from the given file (or stdin when the
file is "-") and persists it. The record must carry a uuid.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

var getCmd = &cobra.Command{
	Use:   "get [uuid]",
	Short: "Print a vCon record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [uuid]",
	Short: "Delete a vCon record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a minimal vCon skeleton with a fresh uuid",
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(newCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading vCon document: %w", err)
	}

	var vcon domain.VCon
	if err := json.Unmarshal(data, &vcon); err != nil {
		return fmt.Errorf("parsing vCon document: %w", err)
	}

	if !storageService.Save(context.Background(), &vcon) {
		return fmt.Errorf("failed to save vCon %q", vcon.UUID)
	}

	cmd.Printf("Saved vCon %s\n", vcon.UUID)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	vcon := storageService.Get(context.Background(), args[0])
	if vcon == nil {
		return fmt.Errorf("vCon not found: %s", args[0])
	}

	data, err := json.MarshalIndent(vcon, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding vCon: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	if !storageService.Delete(context.Background(), args[0]) {
		return fmt.Errorf("failed to delete vCon %q", args[0])
	}

	cmd.Printf("Deleted vCon %s\n", args[0])
	return nil
}

// runNew prints a skeleton record a caller can fill in and pipe back
// into save.
func runNew(cmd *cobra.Command, _ []string) error {
	now := time.Now().UTC()
	vcon := domain.VCon{
		UUID:        uuid.NewString(),
		Version:     domain.DefaultVersion,
		CreatedAt:   now,
		UpdatedAt:   now,
		Redacted:    map[string]any{},
		Appended:    map[string]any{},
		Parties:     []domain.Party{},
		Dialog:      []domain.Dialog{},
		Analysis:    []domain.Analysis{},
		Attachments: []domain.Attachment{},
	}

	data, err := json.MarshalIndent(&vcon, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding vCon: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
