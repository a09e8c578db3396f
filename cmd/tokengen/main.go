// Package main provides a CLI tool for minting operator tokens and admin
// token hashes for local and deployment use.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"certifica/internal/token"
	"certifica/pkg/secrets"
)

// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
const devSigningKey = "dev-signing-key-change-in-production"

const defaultTokenTTL = 12 * time.Hour

type operatorOutput struct {
	Token     string `json:"token"`
	Operator  string `json:"operator"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

type adminOutput struct {
	Token string `json:"token"`
	Hash  string `json:"hash"`
	Usage string `json:"usage"`
}

func main() {
	operatorCmd := flag.NewFlagSet("operator", flag.ExitOnError)
	operatorName := operatorCmd.String("name", "", "Operator name embedded in the token (required)")
	operatorKey := operatorCmd.String("signing-key", "", "JWT signing key. Defaults to the dev key.")
	operatorTTL := operatorCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	operatorJSON := operatorCmd.Bool("json", false, "Output as JSON")

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminToken := adminCmd.String("token", "", "Admin token to hash. Generated if empty.")
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "operator":
		_ = operatorCmd.Parse(os.Args[2:])
		generateOperatorToken(*operatorName, *operatorKey, *operatorTTL, *operatorJSON)
	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		generateAdminHash(*adminToken, *adminJSON)
	default:
		printUsage()
		os.Exit(1)
	}
}

func generateOperatorToken(name, signingKey string, ttl time.Duration, asJSON bool) {
	if name == "" {
		fmt.Fprintln(os.Stderr, "error: -name is required")
		os.Exit(1)
	}
	if signingKey == "" {
		signingKey = devSigningKey
	}

	svc := token.NewService(signingKey, ttl)
	signed, err := svc.Generate(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if asJSON {
		writeJSON(operatorOutput{
			Token:     signed,
			Operator:  name,
			ExpiresIn: ttl.String(),
			Usage:     "Authorization: Bearer <token>",
		})
		return
	}
	fmt.Println(signed)
}

func generateAdminHash(plaintext string, asJSON bool) {
	var err error
	if plaintext == "" {
		plaintext, err = secrets.Generate()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	hash, err := secrets.Hash(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if asJSON {
		writeJSON(adminOutput{
			Token: plaintext,
			Hash:  hash,
			Usage: "export ADMIN_TOKEN_HASH='<hash>'; clients send X-Admin-Token: <token>",
		})
		return
	}
	fmt.Println("token:", plaintext)
	fmt.Println("hash: ", hash)
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: tokengen <command> [flags]

Commands:
  operator   Mint an operator JWT for the issuance endpoints
  admin      Hash an admin token for the ledger endpoints

Examples:
  tokengen operator -name secretaria
  tokengen admin -token my-admin-token`)
}
