package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/capsulehq/capsule-api/cmd/cli/config"
	"github.com/capsulehq/capsule-api/cmd/cli/root"
	"github.com/spf13/cobra"
)

func init() {
	root.GetRoot().AddCommand(registerCmd(), loginCmd())
}

func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  "Create an account on the Capsule API and store the returned token for subsequent commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Token string `json:"token"`
			}
			payload := map[string]string{"username": username, "email": email, "password": password}
			if err := postJSON("/api/auth/register", payload, &out); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("registration succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Println("Registered. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new account")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Capsule API",
		Long:  "Authenticate with the Capsule API and store a bearer token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Token string `json:"token"`
			}
			payload := map[string]string{"email": email, "password": password}
			if err := postJSON("/api/auth/login", payload, &out); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func postJSON(path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
