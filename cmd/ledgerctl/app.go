package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofrs/uuid/v5"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/statement"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
)

func userFlag() cli.Flag {
	return &cli.StringFlag{Name: "user", Usage: "owner `UUID`", Required: true}
}

func accountFlag() cli.Flag {
	return &cli.StringFlag{Name: "account", Usage: "destination account `UUID`"}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Usage: "csv, ofx or qfx; detected from the file name when empty"}
}

func mapFlag() cli.Flag {
	return &cli.StringSliceFlag{Name: "map", Usage: "route a structured source account, `SOURCE=ACCOUNT_UUID`"}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ledgerctl",
		Usage: "statement import and ledger maintenance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config `FILE`",
				EnvVars: []string{"LEDGER_CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "override the configured storage (postgres or memory)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump full results",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "print the format of a statement file",
				ArgsUsage: "FILE",
				Action:    detect,
			},
			{
				Name:      "count",
				Usage:     "count the data rows of a statement file",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{formatFlag()},
				Action:    count,
			},
			{
				Name:      "preview",
				Usage:     "normalize a statement file without writing",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{userFlag(), accountFlag(), formatFlag(), mapFlag(),
					&cli.IntFlag{Name: "limit", Usage: "maximum previewed rows"},
				},
				Action: preview,
			},
			{
				Name:      "import",
				Usage:     "import a statement file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{userFlag(), accountFlag(), formatFlag(), mapFlag(),
					&cli.BoolFlag{Name: "skip-duplicates", Usage: "also skip likely duplicates"},
				},
				Action: importFile,
			},
			{
				Name:  "match",
				Usage: "link transfers between the user's accounts",
				Flags: []cli.Flag{userFlag(),
					&cli.IntFlag{Name: "window", Usage: "candidate window in days", Value: -1},
					&cli.IntFlag{Name: "batch", Usage: "page size"},
				},
				Action: match,
			},
			{
				Name:  "recompute",
				Usage: "recompute an account balance from its transactions",
				Flags: []cli.Flag{userFlag(),
					&cli.StringFlag{Name: "account", Usage: "account `UUID`", Required: true},
					&cli.BoolFlag{Name: "repair", Usage: "overwrite a drifted stored balance"},
				},
				Action: recompute,
			},
		},
	}
}

// env is the storage, workers, and services of one command run.
type env struct {
	svc   *service.Service
	close func()
}

func openEnv(cCtx *cli.Context) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cCtx.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.ProcessEnvironmentVariables()
	}
	if err != nil {
		return nil, err
	}
	if mode := cCtx.String("storage"); mode != "" {
		cfg.StorageMode = mode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger := logging.SetupLogging(cfg.LogLevel)
	logger.Out = cCtx.App.ErrWriter
	if logger.Out == nil {
		logger.Out = os.Stderr
	}

	var store *storage.Storage
	if cfg.StorageMode == config.StorageModeMemory {
		store = memory.NewStorage()
	} else if store, err = storage.NewStorage(cfg); err != nil {
		return nil, err
	}

	op := operator.NewOperatorDelegator(store, cfg.Workers, logger)
	op.Start()
	return &env{
		svc: service.NewService(store, op, service.OptionsFromConfig(cfg), logger),
		close: func() {
			op.Stop()
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("ledgerctl.close")
			}
		},
	}, nil
}

func readFile(cCtx *cli.Context) (string, []byte, error) {
	if cCtx.NArg() != 1 {
		return "", nil, errors.New("expected exactly one FILE argument")
	}
	name := cCtx.Args().First()
	data, err := os.ReadFile(name)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

func parseUUID(name, value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return id, nil
}

func importRequest(cCtx *cli.Context, filename string, data []byte) (*service.ImportRequest, error) {
	userID, err := parseUUID("user", cCtx.String("user"))
	if err != nil {
		return nil, err
	}
	req := &service.ImportRequest{
		UserID:   userID,
		Data:     data,
		Format:   statement.Format(cCtx.String("format")),
		Filename: filename,
	}
	if v := cCtx.String("account"); v != "" {
		if req.AccountID, err = parseUUID("account", v); err != nil {
			return nil, err
		}
	}
	for _, m := range cCtx.StringSlice("map") {
		source, dest, ok := strings.Cut(m, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q, want SOURCE=ACCOUNT_UUID", m)
		}
		id, err := parseUUID("map", dest)
		if err != nil {
			return nil, err
		}
		if req.AccountMapping == nil {
			req.AccountMapping = make(map[string]uuid.UUID)
		}
		req.AccountMapping[source] = id
	}
	return req, nil
}

func debugDump(cCtx *cli.Context, v any) {
	if cCtx.Bool("debug") {
		spew.Fdump(writer(cCtx), v)
	}
}

func writer(cCtx *cli.Context) io.Writer {
	if cCtx.App.Writer != nil {
		return cCtx.App.Writer
	}
	return os.Stdout
}
