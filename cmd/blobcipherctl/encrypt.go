package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/southwinds-io/blobcipher"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a local file with AES-256-CTR and write its header alongside it",
	RunE:  runEncrypt,
}

var (
	encTextDomain, encHeaderDomain   int64
	encTextBaseID, encHeaderBaseID   uint64
	encTextBaseKey, encHeaderBaseKey string
	encIV                            string
	encMode                          string
	encIn, encOut, encHeaderOut      string
)

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().Int64Var(&encTextDomain, "text-domain", 0, "domain ID for the text key")
	encryptCmd.Flags().Uint64Var(&encTextBaseID, "text-base-id", 0, "base cipher ID for the text key")
	encryptCmd.Flags().StringVar(&encTextBaseKey, "text-base-key", "", "text base key, hex-encoded")
	encryptCmd.Flags().Int64Var(&encHeaderDomain, "header-domain", 0, "domain ID for the header key")
	encryptCmd.Flags().Uint64Var(&encHeaderBaseID, "header-base-id", 0, "base cipher ID for the header key")
	encryptCmd.Flags().StringVar(&encHeaderBaseKey, "header-base-key", "", "header base key, hex-encoded")
	encryptCmd.Flags().StringVar(&encIV, "iv", "", "16-byte IV, hex-encoded (32 hex chars)")
	encryptCmd.Flags().StringVar(&encMode, "mode", "single", "auth token mode: none, single, multi")
	encryptCmd.Flags().StringVar(&encIn, "in", "", "input plaintext file")
	encryptCmd.Flags().StringVar(&encOut, "out", "", "output ciphertext file")
	encryptCmd.Flags().StringVar(&encHeaderOut, "header-out", "", "output header file (104 bytes)")

	for _, f := range []string{"text-base-key", "header-base-key", "iv", "in", "out", "header-out"} {
		encryptCmd.MarkFlagRequired(f)
	}
}

func parseAuthTokenMode(s string) (blobcipher.AuthTokenMode, error) {
	switch s {
	case "none":
		return blobcipher.AuthTokenModeNone, nil
	case "single":
		return blobcipher.AuthTokenModeSingle, nil
	case "multi":
		return blobcipher.AuthTokenModeMulti, nil
	default:
		return 0, fmt.Errorf("unknown auth token mode %q (want none, single, or multi)", s)
	}
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	mode, err := parseAuthTokenMode(encMode)
	if err != nil {
		return err
	}

	textBase, err := hex.DecodeString(encTextBaseKey)
	if err != nil {
		return fmt.Errorf("invalid --text-base-key hex: %w", err)
	}
	headerBase, err := hex.DecodeString(encHeaderBaseKey)
	if err != nil {
		return fmt.Errorf("invalid --header-base-key hex: %w", err)
	}
	ivBytes, err := hex.DecodeString(encIV)
	if err != nil || len(ivBytes) != 16 {
		return fmt.Errorf("--iv must be 32 hex characters (16 bytes)")
	}
	var iv [16]byte
	copy(iv[:], ivBytes)

	textKey, err := blobcipher.New(encTextDomain, encTextBaseID, textBase)
	if err != nil {
		return err
	}
	headerKey, err := blobcipher.New(encHeaderDomain, encHeaderBaseID, headerBase)
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(encIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", encIn, err)
	}

	enc := blobcipher.NewEncryptor(textKey, headerKey, iv, mode)
	ciphertext, header, err := enc.Encrypt(plaintext)
	if err != nil {
		return err
	}

	if err := os.WriteFile(encOut, ciphertext, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", encOut, err)
	}
	packed := header.Pack()
	if err := os.WriteFile(encHeaderOut, packed[:], 0600); err != nil {
		return fmt.Errorf("writing %s: %w", encHeaderOut, err)
	}

	fmt.Printf("encrypted %d bytes -> %s (header: %s, salt text=%d header=%d)\n",
		len(plaintext), encOut, encHeaderOut, textKey.Salt(), headerKey.Salt())
	return nil
}
