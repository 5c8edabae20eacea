package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosvidal/aquabill/internal/billing"
	billingdomain "github.com/carlosvidal/aquabill/internal/billing/domain"
	"github.com/carlosvidal/aquabill/internal/clock"
	"github.com/carlosvidal/aquabill/internal/condominium"
	"github.com/carlosvidal/aquabill/internal/config"
	"github.com/carlosvidal/aquabill/internal/logger"
	"github.com/carlosvidal/aquabill/internal/period"
	"github.com/carlosvidal/aquabill/internal/providers/pdf"
	"github.com/carlosvidal/aquabill/internal/rates"
	"github.com/carlosvidal/aquabill/internal/reading"
	"github.com/carlosvidal/aquabill/pkg/db"
	"github.com/carlosvidal/aquabill/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: aquabill <command> [flags]

commands:
  calculate  -period <id>              run the billing calculation and close the period
  validate   -period <id>              preflight check without writing anything
  reopen     -period <id>              reopen a closed period for recalculation
  export     -period <id> [-out file]  render the period statement PDF
`)
}

type command struct {
	verb     string
	periodID string
	out      string
}

func parseArgs(args []string) (*command, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing command")
	}

	cmd := &command{verb: args[0]}
	fs := flag.NewFlagSet(cmd.verb, flag.ExitOnError)
	fs.StringVar(&cmd.periodID, "period", "", "billing period id")
	if cmd.verb == "export" {
		fs.StringVar(&cmd.out, "out", "statement.pdf", "output file")
	}

	switch cmd.verb {
	case "calculate", "validate", "reopen", "export":
	default:
		return nil, fmt.Errorf("unknown command %q", cmd.verb)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	if cmd.periodID == "" {
		return nil, fmt.Errorf("%s: -period is required", cmd.verb)
	}
	return cmd, nil
}

func main() {
	cmd, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		telemetry.Module,

		condominium.Module,
		rates.Module,
		period.Module,
		reading.Module,
		billing.Module,
		pdf.Module,

		fx.Invoke(func(lc fx.Lifecycle, sh fx.Shutdowner, svc billingdomain.Service, provider pdf.Provider, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := run(context.Background(), cmd, svc, provider, log)
						_ = sh.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
}

func run(ctx context.Context, cmd *command, svc billingdomain.Service, provider pdf.Provider, log *zap.Logger) int {
	var err error
	switch cmd.verb {
	case "calculate":
		err = runCalculate(ctx, cmd, svc)
	case "validate":
		err = runValidate(ctx, cmd, svc)
	case "reopen":
		err = svc.Reopen(ctx, cmd.periodID)
		if err == nil {
			fmt.Printf("period %s reopened\n", cmd.periodID)
		}
	case "export":
		err = runExport(ctx, cmd, svc, provider)
	}
	if err != nil {
		log.Error("command failed", zap.String("command", cmd.verb), zap.Error(err))
		return 1
	}
	return 0
}

func runCalculate(ctx context.Context, cmd *command, svc billingdomain.Service) error {
	result, err := svc.Calculate(ctx, cmd.periodID)
	if err != nil {
		return err
	}

	fmt.Printf("period %s closed: %d bills\n", cmd.periodID, len(result.Bills))
	fmt.Printf("  individual consumption: %.2f m3\n", result.TotalIndividualConsumption)
	fmt.Printf("  common area consumption: %.2f m3\n", result.CommonAreaConsumption)
	fmt.Printf("  common area cost per unit: %.2f\n", result.CommonAreaCostPerUnit)
	for _, anomaly := range result.Anomalies {
		fmt.Printf("  anomaly: %s\n", anomaly)
	}
	return nil
}

func runValidate(ctx context.Context, cmd *command, svc billingdomain.Service) error {
	report, err := svc.Validate(ctx, cmd.periodID)
	if err != nil {
		return err
	}
	if report.Valid {
		fmt.Printf("period %s is ready for calculation\n", cmd.periodID)
		return nil
	}
	for _, msg := range report.Errors {
		fmt.Printf("  %s\n", msg)
	}
	return fmt.Errorf("period %s is not ready for calculation", cmd.periodID)
}

func runExport(ctx context.Context, cmd *command, svc billingdomain.Service, provider pdf.Provider) error {
	statement, err := svc.Statement(ctx, cmd.periodID)
	if err != nil {
		return err
	}

	data := pdf.StatementData{
		CondominiumName: statement.CondominiumName,
		PeriodLabel:     statement.PeriodLabel,
		TotalVolume:     statement.TotalVolume,
		TotalAmount:     statement.TotalAmount,
		BilledTotal:     statement.BilledTotal,
		Anomalies:       statement.Anomalies,
	}
	for _, line := range statement.Lines {
		data.Rows = append(data.Rows, pdf.StatementRow{
			UnitNumber:      line.UnitNumber,
			PreviousReading: line.PreviousReading,
			CurrentReading:  line.CurrentReading,
			Consumption:     line.Consumption,
			IndividualCost:  line.IndividualCost,
			CommonAreaCost:  line.CommonAreaCost,
			TotalCost:       line.TotalCost,
		})
	}

	doc, err := provider.GenerateStatement(ctx, data)
	if err != nil {
		return err
	}

	f, err := os.Create(cmd.out)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, doc); err != nil {
		return err
	}
	fmt.Printf("statement written to %s\n", cmd.out)
	return nil
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
