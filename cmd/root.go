package cmd

import (
	"assessment_backend/internal/config"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "assessd",
		Short:         "Timed assessment backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "configs", "配置目录，包含 config.yaml 与 .env")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Execute 执行命令行，失败时以状态码 1 退出
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "assessd: %v\n", err)
		os.Exit(1)
	}
}
