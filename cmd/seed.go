package cmd

import (
	"assessment_backend/internal/cache"
	"assessment_backend/internal/seed"
	"assessment_backend/pkg/database"
	"assessment_backend/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var (
		file      string
		dryRun    bool
		noMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从 YAML 导入测试包与课程",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			if err := f.Validate(); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d packages, %d courses (dry-run, nothing written)\n",
					file, len(f.Packages), len(f.Courses))
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger.InitLogger(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database)
			if err != nil {
				return err
			}
			if !noMigrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}

			var questionCache cache.QuestionCache
			if cfg.Redis.Enabled {
				rdb, err := database.InitRedis(&cfg.Redis)
				if err != nil {
					return err
				}
				defer rdb.Close()
				questionCache = cache.NewRedisQuestionCache(rdb, cfg.Redis.TTL())
			}

			sum, err := seed.Apply(cmd.Context(), db, f, questionCache)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packages=%d sections=%d questions=%d courses=%d topics=%d\n",
				sum.Packages, sum.Sections, sum.Questions, sum.Courses, sum.Topics)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "seed 文件路径")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只校验，不写入数据库")
	cmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "导入前不执行迁移")
	return cmd
}
