package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/creditpanel/internal/adapter/driven/dataset"
	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/bootstrap"
	"github.com/ericfisherdev/creditpanel/internal/config"
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Global flag names.
const (
	flagFormat = "format"
	flagDB     = "db"
	flagModel  = "model"
	flagVocab  = "vocab"
)

// globalFlags are built per app since flags keep parse state.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagFormat,
			Usage: "Output format [text, json, yaml]",
			Value: formatText,
			Validator: func(v string) error {
				switch v {
				case formatText, formatJSON, formatYAML:
					return nil
				}
				return fmt.Errorf("unsupported format %q", v)
			},
		},
		&cli.StringFlag{Name: flagDB, Usage: "Path to the SQLite ledger (overrides CREDITPANEL_DB_PATH)"},
		&cli.StringFlag{Name: flagModel, Usage: "Path to the model artifact (overrides CREDITPANEL_MODEL_PATH)"},
		&cli.StringFlag{Name: flagVocab, Usage: "Path to the vocabulary (overrides CREDITPANEL_VOCAB_PATH)"},
	}
}

// recordView is the printable form of an assessment or ledger record.
type recordView struct {
	ID            int64    `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	IncomeTotal   float64  `json:"income_total" yaml:"income_total"`
	YearsEmployed float64  `json:"years_employed" yaml:"years_employed"`
	IncomeType    string   `json:"income_type" yaml:"income_type"`
	Children      int      `json:"cnt_children" yaml:"cnt_children"`
	OwnsCar       string   `json:"flag_own_car" yaml:"flag_own_car"`
	OwnsRealty    string   `json:"flag_own_realty" yaml:"flag_own_realty"`
	ProbDefault   float64  `json:"prob_default" yaml:"prob_default"`
	CreditScore   int      `json:"credit_score" yaml:"credit_score"`
	RiskLevel     string   `json:"risk_level" yaml:"risk_level"`
	Decision      string   `json:"decision" yaml:"decision"`
	Summary       string   `json:"summary" yaml:"summary"`
	Reasons       []string `json:"reasons" yaml:"reasons"`
}

func toRecordView(rec model.ApplicationRecord) recordView {
	a, res := rec.Applicant, rec.Assessment
	v := recordView{
		ID:            rec.ID,
		IncomeTotal:   a.IncomeTotal,
		YearsEmployed: a.YearsEmployed,
		IncomeType:    a.IncomeType,
		Children:      a.ChildrenCount,
		OwnsCar:       string(a.OwnsCar),
		OwnsRealty:    string(a.OwnsRealty),
		ProbDefault:   res.ProbabilityOfDefault,
		CreditScore:   res.CreditScore,
		RiskLevel:     string(res.RiskTier),
		Decision:      string(res.Decision),
		Summary:       res.Explanation.Summary,
		Reasons:       res.Explanation.Reasons,
	}
	if v.Reasons == nil {
		v.Reasons = []string{}
	}
	if !rec.CreatedAt.IsZero() {
		v.CreatedAt = rec.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// newApp builds the riskctl command tree. Output goes to out, logs to logOut.
func newApp(out, logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "riskctl",
		Usage:   "Operate the creditpanel ledger and risk model",
		Version: version,
		Writer:  out,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			seedCmd(logOut),
			assessCmd(logOut),
			historyCmd(logOut),
			vocabCmd(logOut),
		},
	}
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.IsSet(flagDB) {
		cfg.DBDriver = config.DriverSQLite
		cfg.DBPath = cmd.String(flagDB)
	}
	if cmd.IsSet(flagModel) {
		cfg.ModelPath = cmd.String(flagModel)
	}
	if cmd.IsSet(flagVocab) {
		cfg.VocabPath = cmd.String(flagVocab)
	}
	return cfg, nil
}

// env holds what a subcommand needs. close must be called when done.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *application.AssessService
	seed   *application.SeedService
	close  func() error
}

// openEnv wires the ledger and, when needModel is set, the model bundle.
func openEnv(ctx context.Context, cmd *cli.Command, logOut io.Writer, needModel bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(logOut)

	ledger, closeDB, err := bootstrap.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var sc *application.ServiceContext
	if needModel {
		sc, err = bootstrap.LoadServiceContext(cfg, logger)
		if err != nil {
			_ = closeDB()
			return nil, err
		}
	}

	svc := application.NewAssessService(sc, ledger, nil, logger)
	return &env{
		cfg:    cfg,
		logger: logger,
		svc:    svc,
		seed:   application.NewSeedService(svc, ledger, dataset.NewCSVSource(), cfg.SeedWorkers, nil, logger),
		close:  closeDB,
	}, nil
}

func seedCmd(logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Import the dataset into an empty ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dataset", Usage: "Dataset CSV (overrides CREDITPANEL_DATASET_PATH)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(ctx, cmd, logOut, true)
			if err != nil {
				return err
			}
			defer e.close()

			path := e.cfg.DatasetPath
			if cmd.IsSet("dataset") {
				path = cmd.String("dataset")
			}

			inserted, err := e.seed.SeedFromDataset(ctx, path)
			if err != nil {
				return err
			}
			if inserted == 0 {
				_, err = fmt.Fprintln(cmd.Root().Writer, "ledger already populated, nothing to seed")
				return err
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "seeded %d records from %s\n", inserted, path)
			return err
		},
	}
}

func assessCmd(logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "assess",
		Usage: "Score one applicant and record the result",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "income", Usage: "Annual income", Required: true},
			&cli.FloatFlag{Name: "years", Usage: "Years employed", Required: true},
			&cli.StringFlag{Name: "income-type", Usage: "Income type label", Required: true},
			&cli.IntFlag{Name: "children", Usage: "Number of children"},
			&cli.StringFlag{Name: "car", Usage: "Owns a car [Y, N]", Value: "N"},
			&cli.StringFlag{Name: "realty", Usage: "Owns real estate [Y, N]", Value: "N"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Float("income") < 0 || cmd.Float("years") < 0 || cmd.Int("children") < 0 {
				return errors.New("income, years and children must not be negative")
			}

			e, err := openEnv(ctx, cmd, logOut, true)
			if err != nil {
				return err
			}
			defer e.close()

			applicant := model.NewApplicant(
				cmd.Float("income"),
				cmd.Float("years"),
				cmd.String("income-type"),
				int(cmd.Int("children")),
				model.Flag(cmd.String("car")),
				model.Flag(cmd.String("realty")),
			)

			out, err := e.svc.Assess(ctx, applicant)
			if err != nil {
				return err
			}
			if out.PersistErr != nil {
				e.logger.Warn("assessment not recorded", "error", out.PersistErr)
			}

			rec := out.Record
			if !out.Persisted {
				rec = model.NewApplicationRecord(applicant, out.Assessment)
			}
			return printRecords(cmd, []recordView{toRecordView(rec)})
		},
	}
}

func historyCmd(logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded assessments, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum records to print (0 for all)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(ctx, cmd, logOut, false)
			if err != nil {
				return err
			}
			defer e.close()

			recs, err := e.svc.History(ctx)
			if err != nil {
				return err
			}
			if limit := int(cmd.Int("limit")); limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}

			views := make([]recordView, 0, len(recs))
			for _, rec := range recs {
				views = append(views, toRecordView(rec))
			}
			return printRecords(cmd, views)
		},
	}
}

func vocabCmd(logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "vocab",
		Usage: "Print the accepted labels of every categorical field",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sc, err := bootstrap.LoadServiceContext(cfg, cfg.NewLogger(logOut))
			if err != nil {
				return err
			}

			vocab := sc.Vocabulary
			fields := make(map[string][]string, len(model.CategoricalFields))
			for _, f := range model.CategoricalFields {
				fields[f] = vocab.Labels(f)
			}

			w := cmd.Root().Writer
			switch cmd.String(flagFormat) {
			case formatJSON:
				return json.NewEncoder(w).Encode(fields)
			case formatYAML:
				return yaml.NewEncoder(w).Encode(fields)
			}
			for _, f := range model.CategoricalFields {
				if _, err := fmt.Fprintf(w, "%s: %v\n", f, fields[f]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// printRecords writes views in the selected output format.
func printRecords(cmd *cli.Command, views []recordView) error {
	w := cmd.Root().Writer

	switch cmd.String(flagFormat) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(views)
	}

	for _, v := range views {
		if _, err := fmt.Fprintf(w, "%d\t%s\tscore=%d\t%s\t%s\t%s\n",
			v.ID, v.CreatedAt, v.CreditScore, v.RiskLevel, v.Decision, v.IncomeType); err != nil {
			return err
		}
		for _, r := range v.Reasons {
			if _, err := fmt.Fprintf(w, "\t- %s\n", r); err != nil {
				return err
			}
		}
	}
	return nil
}
