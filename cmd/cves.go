package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tamcore/exploitscout/internal/model"
)

var cvesCmd = &cobra.Command{
	Use:   "cves <cpeName>",
	Short: "List CVEs affecting a product",
	Long: `Cves fetches the vulnerabilities recorded for a CPE name and keeps
those at or above the configured CVSS threshold.

With --exploits, every GitHub repository referenced as exploit code is
looked up and ranked by stars, then forks. Repositories that no longer
exist are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: runCVEs,
}

var (
	cvesOutputJSON bool
	cvesExploits   bool
)

func init() {
	rootCmd.AddCommand(cvesCmd)
	cvesCmd.Flags().Float64("min-severity", 0.0, "minimum CVSS score to report")
	cvesCmd.Flags().BoolVar(&cvesExploits, "exploits", false, "resolve and rank exploit repositories")
	cvesCmd.Flags().BoolVar(&cvesOutputJSON, "json", false, "output results as JSON")

	viper.BindPFlag("min-severity", cvesCmd.Flags().Lookup("min-severity"))
}

func runCVEs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	cpeName := args[0]
	fmt.Fprintf(os.Stderr, "Querying NVD for %s...\n", cpeName)

	vulns, err := a.nvdClient().Query(cmd.Context(), cpeName, a.cfg.MinSeverity)
	if err != nil {
		return err
	}

	if cvesExploits && len(vulns) > 0 {
		fmt.Fprintf(os.Stderr, "Ranking exploit repositories for %d CVE(s)...\n", len(vulns))
		vulns, err = a.enricher().EnrichAll(cmd.Context(), vulns)
		if err != nil {
			return fmt.Errorf("enrichment interrupted: %w", err)
		}
	}

	if cvesOutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vulns)
	}

	if len(vulns) == 0 {
		fmt.Printf("No vulnerabilities found with CVSS >= %.1f\n", a.cfg.MinSeverity)
		return nil
	}

	printCVEs(vulns, a.cfg.MinSeverity, cvesExploits)
	return nil
}

func printCVEs(vulns []model.Vulnerability, threshold float64, withExploits bool) {
	fmt.Printf("\nVulnerabilities found (CVSS >= %.1f):\n", threshold)
	fmt.Println(strings.Repeat("=", 100))
	fmt.Printf("%-18s %-6s %-14s %s\n", "CVE", "CVSS", "Scheme", "Summary")
	fmt.Println(strings.Repeat("-", 100))

	withRepos := 0
	for _, vuln := range vulns {
		fmt.Printf("%-18s %-6.1f %-14s %s\n",
			truncate(vuln.ID, 18),
			vuln.Severity,
			vuln.Scheme,
			truncate(vuln.Summary, 58),
		)

		if !withExploits {
			if vuln.HasExploits() {
				fmt.Printf("%-18s %d exploit repository reference(s)\n", "", vuln.ExploitRepositories.Len())
			}
			continue
		}

		if len(vuln.RankedRepositories) > 0 {
			withRepos++
			for _, line := range strings.Split(model.RenderRepositories(vuln.RankedRepositories), "\n") {
				fmt.Printf("%-18s %s\n", "", line)
			}
		}
	}

	fmt.Println(strings.Repeat("=", 100))
	if withExploits {
		fmt.Printf("Total: %d vulnerabilities, %d with public exploit repositories\n", len(vulns), withRepos)
		return
	}
	fmt.Printf("Total: %d vulnerabilities\n", len(vulns))
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
