package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/southwinds-io/blobcipher"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a file produced by encrypt, verifying its header and auth tokens",
	RunE:  runDecrypt,
}

var (
	decTextDomain, decHeaderDomain   int64
	decTextBaseID, decHeaderBaseID   uint64
	decTextBaseKey, decHeaderBaseKey string
	decTextSalt, decHeaderSalt       uint64
	decIV                            string
	decIn, decHeaderIn, decOut       string
)

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().Int64Var(&decTextDomain, "text-domain", 0, "domain ID for the text key")
	decryptCmd.Flags().Uint64Var(&decTextBaseID, "text-base-id", 0, "base cipher ID for the text key")
	decryptCmd.Flags().StringVar(&decTextBaseKey, "text-base-key", "", "text base key, hex-encoded")
	decryptCmd.Flags().Uint64Var(&decTextSalt, "text-salt", 0, "salt used to derive the text key")
	decryptCmd.Flags().Int64Var(&decHeaderDomain, "header-domain", 0, "domain ID for the header key")
	decryptCmd.Flags().Uint64Var(&decHeaderBaseID, "header-base-id", 0, "base cipher ID for the header key")
	decryptCmd.Flags().StringVar(&decHeaderBaseKey, "header-base-key", "", "header base key, hex-encoded")
	decryptCmd.Flags().Uint64Var(&decHeaderSalt, "header-salt", 0, "salt used to derive the header key")
	decryptCmd.Flags().StringVar(&decIV, "iv", "", "16-byte IV, hex-encoded (32 hex chars)")
	decryptCmd.Flags().StringVar(&decIn, "in", "", "input ciphertext file")
	decryptCmd.Flags().StringVar(&decHeaderIn, "header-in", "", "input header file (104 bytes)")
	decryptCmd.Flags().StringVar(&decOut, "out", "", "output plaintext file")

	for _, f := range []string{"text-base-key", "header-base-key", "iv", "in", "header-in", "out"} {
		decryptCmd.MarkFlagRequired(f)
	}
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	textBase, err := hex.DecodeString(decTextBaseKey)
	if err != nil {
		return fmt.Errorf("invalid --text-base-key hex: %w", err)
	}
	headerBase, err := hex.DecodeString(decHeaderBaseKey)
	if err != nil {
		return fmt.Errorf("invalid --header-base-key hex: %w", err)
	}
	ivBytes, err := hex.DecodeString(decIV)
	if err != nil || len(ivBytes) != 16 {
		return fmt.Errorf("--iv must be 32 hex characters (16 bytes)")
	}
	var iv [16]byte
	copy(iv[:], ivBytes)

	textKey, err := blobcipher.NewWithSalt(decTextDomain, decTextBaseID, textBase, decTextSalt)
	if err != nil {
		return err
	}
	headerKey, err := blobcipher.NewWithSalt(decHeaderDomain, decHeaderBaseID, headerBase, decHeaderSalt)
	if err != nil {
		return err
	}

	headerBytes, err := os.ReadFile(decHeaderIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", decHeaderIn, err)
	}
	header, err := blobcipher.UnpackHeader(headerBytes)
	if err != nil {
		return err
	}

	ciphertext, err := os.ReadFile(decIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", decIn, err)
	}

	dec := blobcipher.NewDecryptor(textKey, headerKey, iv)
	plaintext, err := dec.Decrypt(ciphertext, header)
	if err != nil {
		return err
	}

	if err := os.WriteFile(decOut, plaintext, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", decOut, err)
	}

	fmt.Printf("decrypted %d bytes -> %s\n", len(plaintext), decOut)
	return nil
}
