package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go-rest-posts/internal/config"
	"go-rest-posts/internal/export"
	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/logx"
	"go-rest-posts/internal/model"
)

func newArchiveCommand(opts *RootOptions) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "archive <key>",
		Short: "Fetch a registered archive from its first page",
		Long: `Fetch a registered archive (see ARCHIVES in settings.yaml).

The first page replaces the accumulated sequence; with --pages N the
following pages are appended while the server reports more.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.store.Run(ctx, a.h.FetchArchive(key)); err != nil {
					return err
				}
				for i := 1; i < pages && handler.HasMore(a.substate(), key); i++ {
					if _, err := a.store.Run(ctx, a.h.FetchMore(a.selector(), key, 0)); err != nil {
						return err
					}
				}
				return printArchive(cmd, a, key)
			})
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func newMoreCommand(opts *RootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "more <key>",
		Short: "Append the next page of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if page <= 0 && !handler.HasMore(a.substate(), key) {
					logx.Infof("归档 %s 已无更多", key)
					return printArchive(cmd, a, key)
				}
				if _, err := a.store.Run(ctx, a.h.FetchMore(a.selector(), key, page)); err != nil {
					return err
				}
				return printArchive(cmd, a, key)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "explicit page number (default: current + 1)")
	return cmd
}

func printArchive(cmd *cobra.Command, a *app, key string) error {
	sub := a.substate()
	if a.opts.Format == "text" {
		info := sub.ArchivePages[key]
		fmt.Fprintf(cmd.OutOrStdout(), "# %s page %d/%d\n", key, info.Current, handler.GetTotalPages(sub, key))
	}
	return printPosts(cmd.OutOrStdout(), a.opts.Format, handler.GetArchive(sub, key))
}

func newGetCommand(opts *RootOptions) *cobra.Command {
	var reqContext string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a single resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if reqContext == "" {
					reqContext = a.cfg.API.Context
				}
				if _, err := a.store.Run(ctx, a.h.FetchSingle(id, reqContext)); err != nil {
					return err
				}
				return storeSingle(ctx, cmd, a, id)
			})
		},
	}
	cmd.Flags().StringVar(&reqContext, "context", "", "request context (view|edit|embed)")
	return cmd
}

func newCreateCommand(opts *RootOptions) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
		Long: `Create a resource from a JSON object.

Example:
  posts create --data '{"title":"Hello","status":"draft"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(data)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				id, err := a.store.Run(ctx, a.h.CreateSingle(model.NewPost(fields)))
				if err != nil {
					return err
				}
				logx.Infof("已创建：id=%s", id)
				return storeSingle(ctx, cmd, a, model.ID(id))
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "{}", "resource fields as JSON")
	return cmd
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(data)
			if err != nil {
				return err
			}
			post := model.NewPost(fields)
			post.ID = model.ID(args[0])
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.store.Run(ctx, a.h.UpdateSingle(post)); err != nil {
					return err
				}
				return storeSingle(ctx, cmd, a, post.ID)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "{}", "fields to update as JSON")
	return cmd
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.store.Run(ctx, a.h.DeleteSingle(id)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}

// storeSingle 将单条资源立即写入数据库（不受 --no-save 影响）后输出。
func storeSingle(ctx context.Context, cmd *cobra.Command, a *app, id model.ID) error {
	p, ok := handler.GetSingle(a.substate(), id)
	if !ok {
		// 错误被吞掉（rethrow=false）时 store 中不会有数据
		return fmt.Errorf("resource %s not available", id)
	}
	if err := a.db.UpsertPost(ctx, a.h.Type(), p); err != nil {
		return err
	}
	return printPost(cmd.OutOrStdout(), a.opts.Format, p)
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				// 先写回本次会话的快照，再从库中导出
				if err := a.db.Save(ctx, a.h.Type(), a.substate()); err != nil {
					return err
				}
				if err := export.FromSQLite(ctx, a.db, a.h.Type(), out); err != nil {
					return err
				}
				logx.Infof("已导出 %s", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "data.json", "export json path")
	return cmd
}

func newResetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noSave := opts.NoSave
			opts.NoSave = true
			defer func() { opts.NoSave = noSave }()
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.db.Reset(ctx); err != nil {
					return err
				}
				logx.Infof("已清理数据库表（posts/archives/archive_pages）")
				return nil
			})
		},
	}
}

func newActionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the action names derived for the configured resource type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			vocab, err := handler.NewVocabulary(cfg.API.Type, cfg.HandlerOptions().Actions)
			if err != nil {
				return err
			}
			names := vocab.Map()
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, k := range handler.Kinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", k, names[k.String()])
			}
			return nil
		},
	}
}
