package capsules

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/capsulehq/capsule-api/cmd/cli/config"
	"github.com/capsulehq/capsule-api/cmd/cli/output"
	"github.com/capsulehq/capsule-api/cmd/cli/root"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "capsules",
		Short: "Manage time capsules",
	}
	cmd.AddCommand(listCmd(), getCmd(), createCmd())
	root.GetRoot().AddCommand(cmd)
}

type capsule struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Visibility string `json:"visibility"`
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capsules visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			var capsules []capsule
			if err := doJSON("GET", "/api/timeCapsules", nil, &capsules); err != nil {
				return err
			}
			rows := make([]table.Row, 0, len(capsules))
			for _, c := range capsules {
				rows = append(rows, table.Row{c.ID, c.Visibility, c.Title})
			}
			output.Table(table.Row{"ID", "Visibility", "Title"}, rows)
			return nil
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one capsule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c capsule
			if err := doJSON("GET", "/api/timeCapsules/"+args[0], nil, &c); err != nil {
				return err
			}
			fmt.Printf("%s  [%s]  %s\n%s\n", c.ID, c.Visibility, c.Title, c.Message)
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	var title, message, visibility string
	var recipients []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a capsule",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"title":      title,
				"message":    message,
				"visibility": visibility,
				"recipients": recipients,
			}
			var c capsule
			if err := doJSON("POST", "/api/timeCapsules", payload, &c); err != nil {
				return err
			}
			fmt.Println("Created capsule", c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Capsule title")
	cmd.Flags().StringVar(&message, "message", "", "Capsule message")
	cmd.Flags().StringVar(&visibility, "visibility", "private", "public or private")
	cmd.Flags().StringSliceVar(&recipients, "recipient", nil, "User id allowed to read a private capsule (repeatable)")
	cmd.MarkFlagRequired("title")

	return cmd
}

func doJSON(method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := config.LoadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
