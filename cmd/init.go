package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samzong/hgc/internal/config"
	"github.com/samzong/hgc/internal/hg"
	"github.com/samzong/hgc/internal/textenc"
)

type wizardValues struct {
	HgPath   string
	Encoding string
	APIKey   string
	Model    string
	APIBase  string
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize hgc configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if err := runInitWizard(os.Stdin, outWriter(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Initialization complete.")
			return nil
		},
	}

	saveConfigValues = func(v wizardValues) error {
		config.SetConfigValue("hg_path", v.HgPath)
		config.SetConfigValue("encoding", v.Encoding)
		config.SetConfigValue("api_key", v.APIKey)
		config.SetConfigValue("model", v.Model)
		config.SetConfigValue("api_base", v.APIBase)
		return config.SaveConfig()
	}

	checkHgBinary = func(binary string) (string, error) {
		v, err := hg.NewClient(hg.Options{Binary: binary}).Version()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Mercurial %s (amend supported: %t)", v, v.SupportsAmend()), nil
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitWizard(in io.Reader, out io.Writer, current *config.Config) error {
	cfg, err := initWizardConfig(current)
	if err != nil {
		return err
	}
	readLine := newTrimmedLineReader(in)
	fmt.Fprintln(out, "hgc init - configure Mercurial and LLM settings")

	var values wizardValues
	if values.HgPath, err = promptWithDefault(out, "hg executable", cfg.HgPath, readLine); err != nil {
		return err
	}
	if values.Encoding, err = promptEncoding(out, cfg, readLine); err != nil {
		return err
	}
	if values.APIKey, err = promptAPIKey(out, cfg, readLine); err != nil {
		return err
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	if values.Model, err = promptWithDefault(out, "Model", model, readLine); err != nil {
		return err
	}
	if values.APIBase, err = promptWithDefault(out, "API Base URL", cfg.APIBase, readLine); err != nil {
		return err
	}

	if err := saveConfigValues(values); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return maybeCheckHg(out, values.HgPath, readLine)
}

func initWizardConfig(current *config.Config) (*config.Config, error) {
	if current != nil {
		return current, nil
	}
	return config.GetConfig()
}

func newTrimmedLineReader(in io.Reader) func() (string, error) {
	reader := bufio.NewReader(in)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func promptWithDefault(out io.Writer, label, def string, readLine func() (string, error)) (string, error) {
	shown := def
	if shown == "" {
		shown = "<empty>"
	}
	fmt.Fprintf(out, "%s (default: %s): ", label, shown)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func promptEncoding(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	def := cfg.Encoding
	if def == "" {
		def = config.DefaultEncoding
	}
	for {
		name, err := promptWithDefault(out, "Encoding", def, readLine)
		if err != nil {
			return "", err
		}
		if _, err := textenc.Lookup(name); err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		return name, nil
	}
}

func promptAPIKey(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	if cfg.APIKey != "" {
		fmt.Fprint(out, "OpenAI API Key (leave blank to keep current): ")
	} else {
		fmt.Fprint(out, "OpenAI API Key (optional, needed for --generate): ")
	}

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return cfg.APIKey, nil
	}
	return line, nil
}

func maybeCheckHg(out io.Writer, binary string, readLine func() (string, error)) error {
	for {
		fmt.Fprint(out, "Check the hg executable now? [Y/n]: ")
		answer, err := readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			info, err := checkHgBinary(binary)
			if err != nil {
				fmt.Fprintf(out, "hg check failed: %v\n", err)
				fmt.Fprintln(out, "You can re-run `hgc init` or update config with `hgc config set hg_path <path>`.")
			} else {
				fmt.Fprintf(out, "Found %s\n", info)
			}
			return nil
		case "n", "no":
			return nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}

// ensureLLMConfigured offers to run the init wizard when message generation
// is requested without an API key. It reports whether generation can proceed.
func ensureLLMConfigured(
	cfg *config.Config, in io.Reader, out io.Writer,
	initRunner func(io.Reader, io.Writer, *config.Config) error,
) (bool, error) {
	current := cfg
	if current == nil {
		var err error
		current, err = config.GetConfig()
		if err != nil {
			return false, err
		}
	}
	if strings.TrimSpace(current.APIKey) != "" {
		return true, nil
	}

	fmt.Fprintln(out, "API key is not configured.")
	fmt.Fprintln(out, "An API key is required to generate commit messages.")

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Run `hgc init` now? [Y/n]: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			fmt.Fprintln(out, "Initialization skipped. Run `hgc init` anytime to configure.")
			return false, nil
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "", "y", "yes":
			if err := initRunner(reader, out, current); err != nil {
				return false, err
			}
			return true, nil
		case "n", "no":
			fmt.Fprintln(out, "Initialization skipped. Run `hgc init` anytime to configure.")
			return false, nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}
