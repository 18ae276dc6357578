package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gobudget-cli",
		Short: "GoBudget CLI tool",
		Long:  `A command line interface for interacting with the GoBudget API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoBudget API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(applyTemplateCmd())
	rootCmd.AddCommand(resetBudgetCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(transactionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func summaryCmd() *cobra.Command {
	var income bool

	cmd := &cobra.Command{
		Use:   "summary <month>",
		Short: "Show the monthly budget summary (month as YYYY-MM)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/v1/budget/%s/summary", baseURL, args[0])
			if income {
				url += "?income=true"
			}
			return getJSON(url)
		},
	}

	cmd.Flags().BoolVar(&income, "income", false, "Summarize income categories instead of expense categories")
	return cmd
}

func applyTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply-template <month>",
		Short: "Allocate the month's budget from category templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/v1/budget/%s/apply-template", baseURL, args[0])
			return postJSON(url, nil)
		},
	}
}

func resetBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-budget <month>",
		Short: "Delete the month's envelope allocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/v1/budget/%s/reset", baseURL, args[0])
			return postJSON(url, nil)
		},
	}
}

func reconcileCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reconcile <account-id> <stated-balance>",
		Short: "Reconcile an account against a stated external balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			body := map[string]any{
				"stated_balance": args[1],
				"date":           date + "T00:00:00Z",
			}
			url := fmt.Sprintf("%s/api/v1/accounts/%s/reconcile", baseURL, args[0])
			return postJSON(url, body)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reconciliation date (YYYY-MM-DD, defaults to today)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var payload json.RawMessage
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("%s is not valid JSON: %w", args[0], err)
			}

			url := baseURL + "/api/v1/transactions/import"
			return postJSON(url, payload)
		},
	}
}

func transactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <account-id>",
		Short: "List an account's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/v1/accounts/%s/transactions", baseURL, args[0])
			body, err := request(http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			var txs []struct {
				ID             string    `json:"id"`
				Type           string    `json:"type"`
				Amount         string    `json:"amount"`
				Date           time.Time `json:"date"`
				Note           string    `json:"note"`
				RunningBalance string    `json:"running_balance"`
			}
			if err := json.Unmarshal(body, &txs); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("%-28s %-18s %-12s %-12s %-12s %s\n", "ID", "TYPE", "DATE", "AMOUNT", "BALANCE", "NOTE")
			for _, tx := range txs {
				fmt.Printf("%-28s %-18s %-12s %-12s %-12s %s\n",
					tx.ID, tx.Type, tx.Date.Format("2006-01-02"),
					tx.Amount, tx.RunningBalance, truncate(tx.Note, 40))
			}
			return nil
		},
	}
}

func getJSON(url string) error {
	body, err := request(http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(result)
	return nil
}

func postJSON(url string, payload any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	body, err := request(http.MethodPost, url, reqBody)
	if err != nil {
		return err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(result)
	return nil
}

func request(method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
