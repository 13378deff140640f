package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/content"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/generate"
	"github.com/hpungsan/clarity/internal/manager"
	"github.com/hpungsan/clarity/internal/relay"
)

// newCLIApp creates the CLI application with all commands. a may be nil
// when only help or version output is needed.
func newCLIApp(a *app) *cli.App {
	app := &cli.App{
		Name:    "clarity",
		Usage:   "Content planning for therapists",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Debug logging to stderr"},
		},
		Commands: []*cli.Command{
			summaryCmd(a),
			exportCmd(a),
			exportCategoryCmd(a),
			importCmd(a),
			putCmd(a),
			getCmd(a),
			clearCmd(a),
			backupCmd(a),
			restoreCmd(a),
			ideaCmd(a),
			generateCmd(a),
			scoreCmd(),
			testConnectionCmd(a),
			relayCmd(a),
			watchCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// summaryCmd creates the summary command.
func summaryCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show per-category storage summary",
		Action: func(c *cli.Context) error {
			output, err := a.mgr.Summary(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all data to a JSON backup file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.clarity/exports/<practice>-Backup-<date>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := a.mgr.ExportAll(c.Context, manager.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCategoryCmd creates the export-category command.
func exportCategoryCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "export-category",
		Usage:     "Export one category to a JSON file",
		ArgsUsage: "<category>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.clarity/exports/<category>-backup-<date>.json)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("category is required"))
			}
			output, err := a.mgr.ExportCategory(c.Context, c.Args().First(), manager.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a JSON backup file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Usage: "Replace categories instead of merging content ideas"},
			&cli.BoolFlag{Name: "no-validate", Usage: "Skip required-field checks"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			opts := manager.UserImportOptions()
			opts.Merge = !c.Bool("overwrite")
			opts.Validate = !c.Bool("no-validate")

			output, err := a.mgr.ImportFile(c.Context, c.Args().First(), opts)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// putCmd creates the put command.
func putCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Replace a category with a JSON value (argument or stdin)",
		ArgsUsage: "<category> [json]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("category is required"))
			}
			value := c.Args().Get(1)
			if value == "" {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("value must be given as an argument or piped via stdin"))
				}
				var err error
				if value, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			key := c.Args().First()
			if err := a.mgr.Put(c.Context, key, json.RawMessage(value)); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"category": key, "stored": true})
		},
	}
}

// getCmd creates the get command.
func getCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the stored JSON of a category",
		ArgsUsage: "<category>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("category is required"))
			}
			raw, err := a.mgr.Get(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(raw)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all stored data (auto-backups are kept)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			var confirmer manager.Confirmer = manager.ConfirmFunc(promptConfirm)
			if c.Bool("yes") {
				confirmer = manager.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
			}

			cleared, err := a.mgr.ClearAll(c.Context, confirmer)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"cleared": cleared})
		},
	}
}

// promptConfirm shows message and asks for a y/N answer on the terminal.
func promptConfirm(_ context.Context, message string) (bool, error) {
	if !isTerminal() {
		return false, errors.NewInvalidRequest("confirmation needs a terminal; pass --yes to clear non-interactively")
	}
	fmt.Fprintln(os.Stderr, message)

	prompt := promptui.Prompt{
		Label:     "Clear all data",
		IsConfirm: true,
		Stdout:    os.Stderr,
	}
	if _, err := prompt.Run(); err != nil {
		if stderrors.Is(err, promptui.ErrAbort) || stderrors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return true, nil
}

// backupCmd creates the backup command.
func backupCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Take an auto-backup snapshot now",
		Action: func(c *cli.Context) error {
			key, err := a.mgr.CreateAutoBackup(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"key": key})
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore all data from the latest auto-backup",
		Action: func(c *cli.Context) error {
			output, err := a.mgr.RestoreAutoBackup(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// ideaCmd creates the idea command group.
func ideaCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "idea",
		Usage: "Manage the content vault",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add an idea",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Idea title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Idea body (or pipe via stdin)"},
					&cli.StringFlag{Name: "platform", Usage: "Target platform"},
					&cli.StringFlag{Name: "category", Usage: "Idea category"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					body := c.String("content")
					if body == "" && stdinHasData() {
						var err error
						if body, err = readStdin(); err != nil {
							return outputError(errors.NewInternal(err))
						}
					}
					idea, err := a.mgr.AddIdea(c.Context, manager.IdeaInput{
						Title:    c.String("title"),
						Content:  body,
						Platform: c.String("platform"),
						Category: c.String("category"),
						Tags:     c.String("tags"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(idea)
				},
			},
			{
				Name:  "list",
				Usage: "List ideas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Match title, content or tags"},
					&cli.StringFlag{Name: "category", Value: manager.FilterAll, Usage: "Category filter"},
					&cli.StringFlag{Name: "platform", Value: manager.FilterAll, Usage: "Platform filter"},
				},
				Action: func(c *cli.Context) error {
					ideas, err := a.mgr.ListIdeas(c.Context, manager.IdeaFilter{
						Search:   c.String("search"),
						Category: c.String("category"),
						Platform: c.String("platform"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"ideas": ideas, "count": len(ideas)})
				},
			},
			{
				Name:      "favorite",
				Usage:     "Toggle an idea's favorite flag, or set it with --set",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "set", Usage: "true|false"},
				},
				Action: func(c *cli.Context) error {
					id, err := ideaID(c)
					if err != nil {
						return outputError(err)
					}
					var favorite bool
					if set := c.String("set"); set != "" {
						if favorite, err = strconv.ParseBool(set); err != nil {
							return outputError(errors.NewInvalidRequest("--set must be true or false"))
						}
						err = a.mgr.SetFavorite(c.Context, id, favorite)
					} else {
						favorite, err = a.mgr.ToggleFavorite(c.Context, id)
					}
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"id": id, "favorite": favorite})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an idea",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := ideaID(c)
					if err != nil {
						return outputError(err)
					}
					if err := a.mgr.DeleteIdea(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"id": id, "deleted": true})
				},
			},
		},
	}
}

func ideaID(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewInvalidRequest("idea id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid idea id: %s", c.Args().First()))
	}
	return id, nil
}

// generateCmd creates the generate command group.
func generateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate social content",
		Subcommands: []*cli.Command{
			{
				Name:  "ideas",
				Usage: "Five client-attraction content ideas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "specialization", Usage: "Therapist specialization, steers the niche"},
					&cli.StringFlag{Name: "pillars", Usage: "Comma-separated content pillars (default: brand pillars)"},
					&cli.BoolFlag{Name: "html", Usage: "Render the result as HTML"},
				},
				Action: func(c *cli.Context) error {
					ctx := c.Context
					a.warmUp(ctx)

					profile := generate.Profile{}
					if s := c.String("specialization"); s != "" {
						profile["specialization"] = s
					}
					pillars := manager.SplitTags(c.String("pillars"))
					if len(pillars) == 0 {
						brand, err := a.mgr.BrandFoundation(ctx)
						if err != nil {
							return outputError(err)
						}
						if brand != nil {
							pillars = brand.Pillars()
						}
					}

					return outputResult(a.gen.GenerateContentIdeas(ctx, profile, pillars), c.Bool("html"))
				},
			},
			{
				Name:  "post",
				Usage: "One post for a platform",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "Single Post", Usage: "Single Post|Carousel|Reel"},
					&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Value: "instagram", Usage: "Target platform"},
					&cli.StringFlag{Name: "tone", Value: "warm", Usage: "Tone of voice"},
					&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Post topic"},
					&cli.BoolFlag{Name: "save", Usage: "Save the post to the vault"},
					&cli.BoolFlag{Name: "html", Usage: "Render the result as HTML"},
				},
				Action: func(c *cli.Context) error {
					if c.String("topic") == "" {
						return outputError(errors.NewInvalidRequest("--topic is required"))
					}
					ctx := c.Context
					a.warmUp(ctx)

					req := generate.PostRequest{
						Format:   c.String("format"),
						Platform: c.String("platform"),
						Tone:     c.String("tone"),
						Topic:    c.String("topic"),
					}
					res := a.gen.GeneratePostContent(ctx, req)
					if c.Bool("save") {
						if _, err := a.mgr.SaveGenerated(ctx, manager.GeneratedInput{
							Format:   req.Format,
							Topic:    req.Topic,
							Platform: req.Platform,
							Content:  res.Text,
						}); err != nil {
							return outputError(err)
						}
					}
					return outputResult(res, c.Bool("html"))
				},
			},
			{
				Name:  "instant",
				Usage: "Local content without the network",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "niche", Aliases: []string{"n"}, Value: string(content.DefaultNiche), Usage: "anxiety|trauma|depression|adhd"},
					&cli.StringFlag{Name: "shape", Aliases: []string{"s"}, Value: string(content.FullPost), Usage: "full_post|carousel|reel_script|hook_only"},
					&cli.IntFlag{Name: "count", Usage: "Mixed batch of this many pieces"},
				},
				Action: func(c *cli.Context) error {
					niche, ok := content.ParseNiche(c.String("niche"))
					if !ok {
						return outputError(errors.NewInvalidRequest("unknown niche: " + c.String("niche")))
					}
					if n := c.Int("count"); n > 0 {
						return outputJSON(a.gen.Variety(niche, n))
					}
					return outputJSON(a.gen.InstantContent(niche, content.ParseShape(c.String("shape"))))
				},
			},
		},
	}
}

// scoreCmd creates the score command.
func scoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score a draft for client attraction (argument or stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				var err error
				if text, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}
			if strings.TrimSpace(text) == "" {
				return outputError(errors.NewInvalidRequest("text must be given as an argument or piped via stdin"))
			}
			return outputJSON(content.Assess(text))
		},
	}
}

// testConnectionCmd creates the test-connection command.
func testConnectionCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "test-connection",
		Usage: "Test the AI proxy connection",
		Action: func(c *cli.Context) error {
			avail := a.gen.TestAIAvailability(c.Context)
			output := map[string]any{"available": avail.Available, "reason": avail.Reason}
			if a.conn != nil {
				output["state"] = a.conn.State()
			}
			return outputJSON(output)
		},
	}
}

// relayCmd creates the relay command.
func relayCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Serve the chat-completion proxy (reads " + relay.APIKeyEnv + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: relay_addr from config)"},
			&cli.StringFlag{Name: "base-url", EnvVars: []string{"OPENAI_BASE_URL"}, Usage: "Provider base URL"},
		},
		Action: func(c *cli.Context) error {
			addr := c.String("addr")
			if addr == "" {
				addr = a.cfg.RelayAddr
			}
			apiKey := os.Getenv(relay.APIKeyEnv)
			if apiKey == "" {
				a.logger.Warn("relay started without provider key; completions will fail", zap.String("env", relay.APIKeyEnv))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := relay.New(relay.Options{
				APIKey:  apiKey,
				BaseURL: c.String("base-url"),
				Addr:    addr,
				Timeout: a.cfg.ProxyTimeout(),
				Logger:  a.logger,
			})
			fmt.Fprintf(os.Stderr, "relay listening on http://%s%s\n", addr, relay.ProxyPath)
			if err := srv.ListenAndServe(ctx); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run periodic auto-backups until interrupted",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			unsubscribe := a.mgr.Subscribe(func(ev manager.ChangeEvent) {
				a.logger.Info("data changed", zap.String("reason", ev.Reason), zap.Strings("keys", ev.Keys))
			})
			defer unsubscribe()

			cancel := a.mgr.StartAutoBackup(a.sched)
			defer cancel()

			fmt.Fprintf(os.Stderr, "auto-backup every %s; Ctrl-C to stop\n", a.cfg.BackupInterval())
			<-ctx.Done()
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputResult prints generated text, or its HTML rendering.
func outputResult(res generate.Result, html bool) error {
	if !html {
		return outputJSON(res)
	}
	rendered, err := res.HTML()
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	return outputJSON(map[string]any{"source": res.Source, "html": rendered})
}

// outputError formats error for CLI.
func outputError(err error) error {
	var ce *errors.ClarityError
	if errors.As(err, &ce) {
		return cli.Exit(fmt.Sprintf("[%s] %s", ce.Code, ce.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
