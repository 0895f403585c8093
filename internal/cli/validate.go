package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/biomebot/internal/config"
	"github.com/rcliao/biomebot/internal/dict"
	"github.com/rcliao/biomebot/internal/memory"
)

type validation struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check memory, dictionary and bot files",
	}

	memCmd := &cobra.Command{
		Use:   "memory FILE",
		Short: "Validate a memory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd, args[0], memory.Validate)
		},
	}

	dictCmd := &cobra.Command{
		Use:   "dict FILE",
		Short: "Validate a dictionary file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd, args[0], dict.Validate)
		},
	}

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Validate the bot file, its memory and every part dictionary",
		RunE:  runValidateBot,
	}

	cmd.AddCommand(memCmd, dictCmd, botCmd)
	RootCmd.AddCommand(cmd)
}

func validateFile(cmd *cobra.Command, path string, check func(name, source string) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	results := []validation{result(path, check(path, string(data)))}
	return reportValidation(cmd, results)
}

func runValidateBot(cmd *cobra.Command, args []string) error {
	f, err := config.LoadBot(getBotFile())
	if err != nil {
		return err
	}

	var results []validation
	settings, err := f.Settings()
	if err != nil {
		results = append(results, result("memory", err))
	} else if settings.Memory != "" {
		results = append(results, result("memory", memory.Validate("memory", settings.Memory)))
	}

	for _, pc := range f.PartSettings {
		ps, err := f.Part(pc.Name)
		if err == nil {
			err = dict.Validate(pc.Name, ps.DictSource)
		}
		results = append(results, result("part "+pc.Name, err))
	}
	for _, name := range f.Parts {
		if _, err := f.Part(name); err != nil {
			results = append(results, result("order "+name, fmt.Errorf("no settings for part %q", name)))
		}
	}
	return reportValidation(cmd, results)
}

func result(name string, err error) validation {
	if err != nil {
		return validation{Name: name, Error: err.Error()}
	}
	return validation{Name: name, OK: true}
}

// reportValidation prints results and fails when any check failed.
func reportValidation(cmd *cobra.Command, results []validation) error {
	w := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	if jsonOutput() {
		if err := printJSON(w, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.OK {
				fmt.Fprintf(w, "ok    %s\n", r.Name)
			} else {
				fmt.Fprintf(w, "FAIL  %s\n", r.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
