package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftscan/internal/config"
	"github.com/blackwell-systems/driftscan/internal/output"
)

var doctorFlagJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the driftscan setup is healthy",
	Long: `Run a series of health checks against your driftscan configuration and
the git installation it depends on. Prints a pass/fail line for each check
and a summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFlagJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	checks := []doctorCheck{
		checkGitBinary(),
		checkGitVersion(cmd.Context()),
		checkConfigFile(flagConfig),
		checkScanRoot(cfg.Root),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if doctorFlagJSON {
		out := doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(output.Section("Doctor"))
	fmt.Println()

	for _, c := range checks {
		renderDoctorCheck(c)
	}

	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-30s %s\n", indicator, label, detail)
}

// checkGitBinary verifies that git is on PATH.
func checkGitBinary() doctorCheck {
	path, err := exec.LookPath("git")
	if err != nil {
		return doctorCheck{
			Name:    "git binary",
			Passed:  false,
			Message: "git not found on PATH",
		}
	}
	return doctorCheck{
		Name:    "git binary",
		Passed:  true,
		Message: path,
	}
}

// checkGitVersion runs `git --version` to confirm the binary executes.
func checkGitVersion(ctx context.Context) doctorCheck {
	out, err := exec.CommandContext(ctx, "git", "--version").Output()
	if err != nil {
		return doctorCheck{
			Name:    "git version",
			Passed:  false,
			Message: fmt.Sprintf("git --version failed: %v", err),
		}
	}
	return doctorCheck{
		Name:    "git version",
		Passed:  true,
		Message: strings.TrimSpace(string(out)),
	}
}

// checkConfigFile verifies the config file, if any, exists and is readable.
// No config file at all is fine: every setting has a default.
func checkConfigFile(cfgFile string) doctorCheck {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		if cfgFile == "" {
			return doctorCheck{
				Name:    "Config file",
				Passed:  true,
				Message: "none (defaults in effect)",
			}
		}
		return doctorCheck{
			Name:    "Config file",
			Passed:  false,
			Message: fmt.Sprintf("not found: %s", path),
		}
	}
	if info.IsDir() {
		return doctorCheck{
			Name:    "Config file",
			Passed:  false,
			Message: fmt.Sprintf("path is a directory: %s", path),
		}
	}
	return doctorCheck{
		Name:    "Config file",
		Passed:  true,
		Message: path,
	}
}

// checkScanRoot verifies the configured default root exists, when set.
func checkScanRoot(root string) doctorCheck {
	if root == "" {
		return doctorCheck{
			Name:    "Scan root",
			Passed:  true,
			Message: "not configured (current directory used)",
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return doctorCheck{
			Name:    "Scan root",
			Passed:  false,
			Message: fmt.Sprintf("not found: %s", root),
		}
	}
	if !info.IsDir() {
		return doctorCheck{
			Name:    "Scan root",
			Passed:  false,
			Message: fmt.Sprintf("path exists but is not a directory: %s", root),
		}
	}
	return doctorCheck{
		Name:    "Scan root",
		Passed:  true,
		Message: root,
	}
}
