package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/StefanUPB/tng-gtk-common/internal/bootstrap"
)

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func newApp(out io.Writer) *cli.Command {
	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "dotenv file loaded before reading the environment",
		Value: ".env",
	}

	return &cli.Command{
		Name:   "tng-gtk-common-admin",
		Usage:  "maintenance tasks for the package intake gateway",
		Writer: out,
		Flags:  []cli.Flag{envFlag},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "manage the process_records schema",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "apply pending migrations",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "timeout",
								Usage: "abort migrations after this long",
								Value: defaultMigrationTimeout,
							},
						},
						Action: migrateRunAction,
					},
					{
						Name:   "status",
						Usage:  "list embedded migrations and when they were applied",
						Action: migrateStatusAction,
					},
				},
			},
			{
				Name:  "status",
				Usage: "inspect or repair process records in the configured store",
				Commands: []*cli.Command{
					{
						Name:  "get",
						Usage: "print the record of a process",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Usage: "process UUID", Required: true},
						},
						Action: statusGetAction,
					},
					{
						Name:  "put",
						Usage: "overwrite the record of a process",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Usage: "process UUID", Required: true},
							&cli.StringFlag{Name: "status", Usage: "waiting, running, failed or success", Required: true},
							&cli.StringFlag{Name: "error", Usage: "error message, kept only for failed"},
						},
						Action: statusPutAction,
					},
					{
						Name:  "prune",
						Usage: "delete Postgres records not updated within the window",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "older-than",
								Usage: "age of the records to delete",
								Value: 30 * 24 * time.Hour,
							},
						},
						Action: statusPruneAction,
					},
				},
			},
			{
				Name:  "scratch",
				Usage: "manage materialized files",
				Commands: []*cli.Command{
					{
						Name:  "sweep",
						Usage: "remove materialized files once, like the janitor does",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "retention",
								Usage: "override SCRATCH_RETENTION",
							},
						},
						Action: scratchSweepAction,
					},
				},
			},
		},
	}
}
