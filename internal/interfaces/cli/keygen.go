package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/crypto"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a contact-encryption key",
		Long:  "Generates a random AES-256 key, base64-encoded for SAFEHARBOR_ENCRYPTION_CONTACT_KEY.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

//Personal.AI order the ending
