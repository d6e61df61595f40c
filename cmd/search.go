package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search NVD products by keyword",
	Long: `Search lists the CPE products whose titles match the keyword.
The CPE name in parentheses is the argument for "exploitscout cves".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var (
	searchOutputJSON bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchOutputJSON, "json", false, "output results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	products, err := a.nvdClient().SearchProducts(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if searchOutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}

	if len(products) == 0 {
		fmt.Println("No products found for", args[0])
		return nil
	}

	for i, p := range products {
		fmt.Printf("%d. %s\n", i+1, p)
	}
	return nil
}
