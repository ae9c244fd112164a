package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/lrs-signal/internal/config"
)

const (
	schemaFileName       = "lrs-config.json"
	sampleConfigFileName = "lrs.yaml"
)

func initAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	schemaPath := filepath.Join(dir, schemaFileName)
	sampleConfigPath := filepath.Join(dir, sampleConfigFileName)

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		return err
	}

	if err := generateSchemaFile(schemaPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Schema successfully generated at %s\n", schemaPath)

	created, err := generateSampleConfig(config.Defaults(), sampleConfigPath, schemaFileName)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(cmd.Root().Writer, "Sample config successfully generated at %s\n", sampleConfigPath)
	}

	return nil
}

// generateSchemaFile writes the config JSON schema to path, creating parent directories.
func generateSchemaFile(path string) error {
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(schemaJSON), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes cfg as YAML to path unless the file already exists.
// It reports whether a file was written.
func generateSampleConfig(cfg config.Config, path, schemaName string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	yamlBytes, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, yamlBytes, 0o644); err != nil {
		return false, fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return true, nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func validatePaths(schemaPath, sampleConfigPath string) error {
	if strings.TrimSpace(schemaPath) == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if strings.TrimSpace(sampleConfigPath) == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}
