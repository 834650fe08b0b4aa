package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/southwinds-io/blobcipher/tokensign"
)

var genKeypairCmd = &cobra.Command{
	Use:   "generate-keypair",
	Short: "Generate an ECDSA P-256 key pair for token signing, DER-encoded",
	RunE:  runGenKeypair,
}

var (
	genPrivOut, genPubOut string
)

func init() {
	rootCmd.AddCommand(genKeypairCmd)
	genKeypairCmd.Flags().StringVar(&genPrivOut, "private-out", "", "output path for the private key (DER)")
	genKeypairCmd.Flags().StringVar(&genPubOut, "public-out", "", "output path for the public key (DER)")
	genKeypairCmd.MarkFlagRequired("private-out")
	genKeypairCmd.MarkFlagRequired("public-out")
}

func runGenKeypair(cmd *cobra.Command, args []string) error {
	priv, pub, err := tokensign.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := os.WriteFile(genPrivOut, priv, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", genPrivOut, err)
	}
	if err := os.WriteFile(genPubOut, pub, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", genPubOut, err)
	}
	fmt.Printf("wrote private key to %s, public key to %s\n", genPrivOut, genPubOut)
	return nil
}

var signTokenCmd = &cobra.Command{
	Use:   "sign-token",
	Short: "Sign an auth token with an ECDSA private key",
	RunE:  runSignToken,
}

var (
	signKeyName   string
	signPrivateIn string
	signExpiresAt float64
	signTenants   string
	signOut       string
)

func init() {
	rootCmd.AddCommand(signTokenCmd)
	signTokenCmd.Flags().StringVar(&signKeyName, "key-name", "", "name of the signing key, embedded in the signed token")
	signTokenCmd.Flags().StringVar(&signPrivateIn, "private-key", "", "path to the DER-encoded private key")
	signTokenCmd.Flags().Float64Var(&signExpiresAt, "expires-at", 0, "token expiry, as a unix timestamp")
	signTokenCmd.Flags().StringVar(&signTenants, "tenants", "", "comma-separated list of tenants this token authorizes")
	signTokenCmd.Flags().StringVar(&signOut, "out", "", "output path for the signed token (payload||signature||key-name, newline-delimited hex)")

	for _, f := range []string{"key-name", "private-key", "out"} {
		signTokenCmd.MarkFlagRequired(f)
	}
}

func runSignToken(cmd *cobra.Command, args []string) error {
	priv, err := os.ReadFile(signPrivateIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", signPrivateIn, err)
	}

	var tenants [][]byte
	if signTenants != "" {
		for _, t := range strings.Split(signTenants, ",") {
			tenants = append(tenants, []byte(t))
		}
	}

	token := &tokensign.AuthToken{
		ExpiresAt: signExpiresAt,
		Tenants:   tenants,
	}

	signed, err := tokensign.Sign(token, signKeyName, priv)
	if err != nil {
		return err
	}

	out := strings.Join([]string{
		hex.EncodeToString(signed.TokenPayload),
		hex.EncodeToString(signed.Signature),
		hex.EncodeToString(signed.KeyName),
	}, "\n") + "\n"

	if err := os.WriteFile(signOut, []byte(out), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", signOut, err)
	}
	fmt.Printf("wrote signed token to %s\n", signOut)
	return nil
}

var verifyTokenCmd = &cobra.Command{
	Use:   "verify-token",
	Short: "Verify a signed auth token against an ECDSA public key",
	RunE:  runVerifyToken,
}

var (
	verifyPublicIn string
	verifyIn       string
)

func init() {
	rootCmd.AddCommand(verifyTokenCmd)
	verifyTokenCmd.Flags().StringVar(&verifyPublicIn, "public-key", "", "path to the DER-encoded public key")
	verifyTokenCmd.Flags().StringVar(&verifyIn, "in", "", "path to the signed token written by sign-token")

	for _, f := range []string{"public-key", "in"} {
		verifyTokenCmd.MarkFlagRequired(f)
	}
}

func runVerifyToken(cmd *cobra.Command, args []string) error {
	pub, err := os.ReadFile(verifyPublicIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", verifyPublicIn, err)
	}

	raw, err := os.ReadFile(verifyIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", verifyIn, err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		return fmt.Errorf("malformed signed token file %s", verifyIn)
	}

	payload, err := hex.DecodeString(lines[0])
	if err != nil {
		return fmt.Errorf("decoding token payload: %w", err)
	}
	sig, err := hex.DecodeString(lines[1])
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}
	keyName, err := hex.DecodeString(lines[2])
	if err != nil {
		return fmt.Errorf("decoding key name: %w", err)
	}

	signed := &tokensign.SignedAuthToken{
		TokenPayload: payload,
		Signature:    sig,
		KeyName:      keyName,
	}

	ok, err := tokensign.Verify(signed, pub)
	if err != nil {
		return err
	}
	if ok {
		fmt.Println("signature valid")
		return nil
	}
	fmt.Println("signature INVALID")
	os.Exit(1)
	return nil
}
