package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// componentsCmd はコンポーネントスキーマ管理のサブコマンド群。
func componentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "Manage component schemas",
	}
	cmd.AddCommand(componentsListCmd())
	cmd.AddCommand(componentsInfoCmd())
	cmd.AddCommand(componentsEnableCmd())
	cmd.AddCommand(componentsDisableCmd())
	cmd.AddCommand(componentsDriftCmd())
	return cmd
}

func requireAPIURL() error {
	if apiURL == "" {
		return fmt.Errorf("--api-url is required (or set SCHEMACTL_API_URL)")
	}
	return nil
}

func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// componentsListCmd は登録済みコンポーネント一覧の取得コマンド。
func componentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered components",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			resp, err := httpClient.Get(apiURL + "/v1/components")
			if err != nil {
				return fmt.Errorf("API request failed: %w", err)
			}
			body, err := readResponse(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return handleErrorResponse(resp.StatusCode, body)
			}

			if output == "json" {
				fmt.Println(string(body))
				return nil
			}

			var result struct {
				Components []struct {
					ID            string   `json:"id"`
					Name          string   `json:"name"`
					ManagesSchema bool     `json:"manages_schema"`
					Tables        []string `json:"tables"`
				} `json:"components"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSCHEMA\tTABLES")
			for _, c := range result.Components {
				schema := "-"
				if c.ManagesSchema {
					schema = "managed"
				}
				tables := "-"
				if len(c.Tables) > 0 {
					tables = strings.Join(c.Tables, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, schema, tables)
			}
			return w.Flush()
		},
	}
}

// componentsInfoCmd はスキーマ状態スナップショットの取得コマンド。
func componentsInfoCmd() *cobra.Command {
	var componentID string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show schema state for a component",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/components/%s/schema", apiURL, componentID)
			resp, err := httpClient.Get(url)
			if err != nil {
				return fmt.Errorf("API request failed: %w", err)
			}
			body, err := readResponse(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return handleErrorResponse(resp.StatusCode, body)
			}

			if output == "json" {
				fmt.Println(string(body))
				return nil
			}

			var result struct {
				ComponentID string   `json:"component_id"`
				HasSchema   bool     `json:"has_schema"`
				Tables      []string `json:"tables"`
				TablesExist []bool   `json:"tables_exist"`
				SchemaState *struct {
					ManifestVersion int `json:"manifest_version"`
				} `json:"schema_state"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			if !result.HasSchema {
				fmt.Printf("Component %q does not manage a schema\n", result.ComponentID)
				return nil
			}
			tracked := "not enabled"
			if result.SchemaState != nil {
				tracked = fmt.Sprintf("enabled (manifest v%d)", result.SchemaState.ManifestVersion)
			}
			fmt.Printf("Component %q: %s\n", result.ComponentID, tracked)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "TABLE\tEXISTS")
			for i, tbl := range result.Tables {
				exists := "no"
				if i < len(result.TablesExist) && result.TablesExist[i] {
					exists = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\n", tbl, exists)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "Component ID (required)")
	cmd.MarkFlagRequired("component")
	return cmd
}

// componentsEnableCmd はスキーマ有効化コマンド。
func componentsEnableCmd() *cobra.Command {
	var componentID string
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable schema for a component",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/components/%s/schema/enable", apiURL, componentID)
			resp, err := httpClient.Post(url, "application/json", nil)
			if err != nil {
				return fmt.Errorf("API request failed: %w", err)
			}
			body, err := readResponse(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return handleErrorResponse(resp.StatusCode, body)
			}

			if output == "json" {
				fmt.Println(string(body))
			} else {
				fmt.Printf("Enabled schema for component %q\n", componentID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "Component ID (required)")
	cmd.MarkFlagRequired("component")
	return cmd
}

// componentsDisableCmd はスキーマ無効化コマンド。
// デフォルトではデータを保持する。--destroy-dataでテーブルを削除する。
func componentsDisableCmd() *cobra.Command {
	var componentID string
	var destroyData bool
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable schema for a component",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			reqBody, err := json.Marshal(map[string]bool{"retain_data": !destroyData})
			if err != nil {
				return fmt.Errorf("encoding request: %w", err)
			}

			url := fmt.Sprintf("%s/v1/components/%s/schema/disable", apiURL, componentID)
			resp, err := httpClient.Post(url, "application/json", bytes.NewReader(reqBody))
			if err != nil {
				return fmt.Errorf("API request failed: %w", err)
			}
			body, err := readResponse(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return handleErrorResponse(resp.StatusCode, body)
			}

			if output == "json" {
				fmt.Println(string(body))
			} else if destroyData {
				fmt.Printf("Disabled schema for component %q (tables dropped)\n", componentID)
			} else {
				fmt.Printf("Disabled schema for component %q (data retained)\n", componentID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "Component ID (required)")
	cmd.Flags().BoolVar(&destroyData, "destroy-data", false, "Drop the component's tables instead of retaining them")
	cmd.MarkFlagRequired("component")
	return cmd
}

// componentsDriftCmd はドリフトチェックコマンド。
func componentsDriftCmd() *cobra.Command {
	var componentID string
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Check schema drift for a component",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/components/%s/schema/drift", apiURL, componentID)
			resp, err := httpClient.Post(url, "application/json", nil)
			if err != nil {
				return fmt.Errorf("API request failed: %w", err)
			}
			body, err := readResponse(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return handleErrorResponse(resp.StatusCode, body)
			}

			if output == "json" {
				fmt.Println(string(body))
				return nil
			}

			var result struct {
				ComponentID string `json:"component_id"`
				Drift       struct {
					HasMissingTables    bool     `json:"has_missing_tables"`
					HasUnexpectedTables bool     `json:"has_unexpected_tables"`
					Details             []string `json:"details"`
				} `json:"drift"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			if !result.Drift.HasMissingTables && !result.Drift.HasUnexpectedTables {
				fmt.Printf("Component %q: no drift detected\n", result.ComponentID)
				return nil
			}
			fmt.Printf("Component %q: drift detected\n", result.ComponentID)
			for _, d := range result.Drift.Details {
				fmt.Printf("  - %s\n", d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "Component ID (required)")
	cmd.MarkFlagRequired("component")
	return cmd
}
