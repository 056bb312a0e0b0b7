// 包 cli 提供命令行入口：每个子命令加载配置、恢复 SQLite 快照、
// 通过 handler 的动作创建器访问 REST 接口，结束后写回快照。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions 为所有子命令共享的全局参数。
type RootOptions struct {
	ConfigPath string
	Format     string // text|json
	NoSave     bool
}

var validFormats = []string{"text", "json"}

// NewRootCommand 创建根命令。
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "REST posts client",
		Long:  "Fetch, page, create, update and delete REST resources through a reducer-based store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "settings.yaml", "path to settings.yaml")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoSave, "no-save", false, "do not write the store snapshot back to the database")

	cmd.AddCommand(newArchiveCommand(opts))
	cmd.AddCommand(newMoreCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newCreateCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newResetCommand(opts))
	cmd.AddCommand(newActionsCommand(opts))

	return cmd
}
