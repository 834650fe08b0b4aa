package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/southwinds-io/blobcipher"
)

var deriveCmd = &cobra.Command{
	Use:   "derive-key",
	Short: "Derive an AES-256 working key from a base key, domain, and salt",
	RunE:  runDerive,
}

var (
	deriveDomain  int64
	deriveBaseID  uint64
	deriveBase    string
	deriveSalt    uint64
	deriveUseSalt bool
)

func init() {
	rootCmd.AddCommand(deriveCmd)
	deriveCmd.Flags().Int64Var(&deriveDomain, "domain", 0, "encryption domain ID")
	deriveCmd.Flags().Uint64Var(&deriveBaseID, "base-id", 0, "base cipher ID")
	deriveCmd.Flags().StringVar(&deriveBase, "base-key", "", "base key bytes, hex-encoded")
	deriveCmd.Flags().Uint64Var(&deriveSalt, "salt", 0, "salt (omit to generate one)")
	deriveCmd.MarkFlagRequired("base-key")
}

func runDerive(cmd *cobra.Command, args []string) error {
	base, err := hex.DecodeString(deriveBase)
	if err != nil {
		return fmt.Errorf("invalid --base-key hex: %w", err)
	}

	var key *blobcipher.CipherKey
	if cmd.Flags().Changed("salt") {
		key, err = blobcipher.NewWithSalt(deriveDomain, deriveBaseID, base, deriveSalt)
	} else {
		key, err = blobcipher.New(deriveDomain, deriveBaseID, base)
	}
	if err != nil {
		return err
	}

	fmt.Printf("domain_id=%d base_cipher_id=%d salt=%d created_at=%d\n",
		key.DomainID(), key.BaseCipherID(), key.Salt(), key.CreatedAt())
	return nil
}
