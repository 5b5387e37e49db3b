package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/classify"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/errors"
	"github.com/siftlabs/sift/internal/ops"
	"github.com/siftlabs/sift/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, classifier classify.Classifier) *cli.App {
	app := &cli.App{
		Name:    "sift",
		Usage:   "Capture triage and filing",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(db, cfg, classifier),
			queueCmd(db),
			showCmd(db),
			skipCmd(db),
			correctCmd(db),
			discardCmd(db),
			exportCmd(db, cfg),
			knowledgeCmd(db),
			linkCmd(db),
			unlinkCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB, cfg *config.Config, classifier classify.Classifier) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Capture a thought (as an argument, or piped via stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			rawText := strings.Join(c.Args().Slice(), " ")
			if rawText == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				rawText = text
			}
			if rawText == "" {
				return outputError(errors.NewInvalidRequest("capture text is required (argument or stdin)"))
			}

			output, err := ops.Ingest(c.Context, db, cfg, classifier, ops.IngestInput{RawText: rawText})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// queueCmd creates the queue command.
func queueCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "List captures awaiting review, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultQueueLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Queue(c.Context, db, ops.QueueInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the full audit view of a capture",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// skipCmd creates the skip command.
func skipCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "skip",
		Usage:     "Dismiss queued captures without filing them",
		ArgsUsage: "<id> [id...]",
		Action: func(c *cli.Context) error {
			ids := c.Args().Slice()
			if len(ids) == 0 {
				return outputError(errors.NewInvalidRequest("at least one id is required"))
			}

			if len(ids) == 1 {
				output, err := ops.Skip(c.Context, db, ops.SkipInput{ID: ids[0]})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.BatchSkip(c.Context, db, ops.BatchSkipInput{IDs: ids})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// correctCmd creates the correct command.
func correctCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "correct",
		Usage:     "File a queued capture under a human-chosen category",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true, Usage: "Target category (task|project|person|learning|health|content|question)"},
			&cli.StringFlag{Name: "note", Required: true, Usage: "Correction note for the audit trail"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Record name (required for task, project, person, content)"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Record description or content"},
			&cli.IntFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Task priority 1-5"},
			&cli.StringFlag{Name: "project", Usage: "Parent project name for tasks"},
			&cli.StringFlag{Name: "domain", Usage: "Project domain grouping"},
			&cli.StringFlag{Name: "url", Usage: "URL for content items"},
			&cli.StringFlag{Name: "edited-text", Usage: "Cleaned-up text fed to the destination record"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Correct(c.Context, db, ops.CorrectInput{
				ID:       c.Args().First(),
				Category: c.String("category"),
				Note:     c.String("note"),
				Fields: capture.Fields{
					Name:        c.String("name"),
					Description: c.String("description"),
					Priority:    c.Int("priority"),
					Project:     c.String("project"),
					Domain:      c.String("domain"),
					URL:         c.String("url"),
				},
				EditedText: c.String("edited-text"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// discardCmd creates the discard command.
func discardCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "discard",
		Usage:     "Permanently delete a capture from the audit log",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Discard(c.Context, db, ops.DiscardInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all captures to a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Destination .csv path (default: ~/.sift/exports/captures-<timestamp>.csv)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// knowledgeCmd creates the knowledge command.
func knowledgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "knowledge",
		Usage:     "Rank knowledge items by relevance to a task",
		ArgsUsage: "<task-id>",
		Action: func(c *cli.Context) error {
			output, err := ops.KnowledgeSearch(c.Context, db, ops.KnowledgeSearchInput{
				TaskID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// linkCmd creates the link command.
func linkCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "Attach a knowledge item to a task",
		ArgsUsage: "<task-id> <item-id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Link(c.Context, db, ops.LinkInput{
				TaskID: c.Args().Get(0),
				ItemID: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// unlinkCmd creates the unlink command.
func unlinkCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "unlink",
		Usage:     "Detach a knowledge item from a task",
		ArgsUsage: "<task-id> <item-id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Unlink(c.Context, db, ops.LinkInput{
				TaskID: c.Args().Get(0),
				ItemID: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the review web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8743, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// outputJSON prints indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.SiftError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
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
