package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mailadmin "github.com/mailadmin/client-go"
)

var (
	errSignatureMismatch = errors.New("signature does not match")
	errInvalidDocument   = errors.New("document is not valid JSON")
)

func (a *app) newPublicKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "public-key",
		Short: "Fetch and print the server's RSA public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.client.PublicKey(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, key)
			return err
		},
	}
}

func (a *app) newEncryptCmd() *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a password with the server's public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := a.readPassword("Password: ", fromStdin)
			if err != nil {
				return err
			}
			ciphertext, err := a.client.EncryptPasswordWithRSA(cmd.Context(), password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, ciphertext)
			return err
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func (a *app) newHashCmd() *cobra.Command {
	var (
		username  string
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash and sign a password for a login submission",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			password, err := a.readPassword("Password: ", fromStdin)
			if err != nil {
				return err
			}
			sub, err := a.client.EncryptPassword(password, username)
			if err != nil {
				return err
			}
			return a.printJSON(sub)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) newVerifyCmd() *cobra.Command {
	var signature string
	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check a JSON document against an expected SHA-256 digest",
		Long: "Reads a JSON document from file, or stdin when file is omitted or \"-\", " +
			"and compares the digest of its compact encoding with --signature. " +
			"Object keys are hashed in the order they appear.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := a.readDocument(args)
			if err != nil {
				return err
			}
			ok, err := mailadmin.VerifyResponseSignature(data, signature)
			if err != nil {
				return err
			}
			if err := a.printJSON(map[string]bool{"valid": ok}); err != nil {
				return err
			}
			if !ok {
				return errSignatureMismatch
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "expected lowercase hex digest")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

// readDocument returns the JSON document named by args as raw JSON.
// Object keys keep their order; the digest is taken over the compacted
// document exactly as the server serialized it.
func (a *app) readDocument(args []string) (json.RawMessage, error) {
	r := a.in
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if !json.Valid(raw) {
		return nil, errInvalidDocument
	}
	return json.RawMessage(raw), nil
}

func (a *app) newLoginCmd() *cobra.Command {
	var (
		username  string
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the issued session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := a.readPassword("Password: ", fromStdin)
			if err != nil {
				return err
			}
			session, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]any{
				"token": session.Token,
				"user":  session.User,
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) newPasswdCmd() *cobra.Command {
	var (
		req       mailadmin.ChangePasswordRequest
		token     string
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change an administrator password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.useToken(token); err != nil {
				return err
			}
			password, err := a.readPassword("New password: ", fromStdin)
			if err != nil {
				return err
			}
			req.NewPassword = password
			if err := a.client.ChangePassword(cmd.Context(), req); err != nil {
				return err
			}
			return a.printJSON(map[string]bool{"success": true})
		},
	}
	cmd.Flags().Int64Var(&req.AdminID, "admin-id", 0, "administrator ID")
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "administrator username")
	cmd.Flags().StringVar(&token, "token", "", "session token (default $MAILADMIN_TOKEN)")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the new password from stdin")
	_ = cmd.MarkFlagRequired("admin-id")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) newWhoamiCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the user the session token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.useToken(token); err != nil {
				return err
			}
			user, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(user)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token (default $MAILADMIN_TOKEN)")
	return cmd
}

// useToken installs the session token from the flag or MAILADMIN_TOKEN.
func (a *app) useToken(flag string) error {
	token := flag
	if token == "" {
		token = os.Getenv("MAILADMIN_TOKEN")
	}
	if token == "" {
		return mailadmin.ErrNotLoggedIn
	}
	a.client.SetToken(token)
	return nil
}
