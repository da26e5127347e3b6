package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/clipper"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/database"
	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/logging"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// env is what every subcommand works with.
type env struct {
	cfg     *config.Config
	db      *database.DB
	metrics *metrics.Store
	app     *app.App
}

func setup() (*env, error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	kv, err := db.PlanKV(cfg.Store, cfg.DataDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize plan store: %w", err)
	}

	factory, provider, err := llm.NewFactory(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider, err)
	}

	metricsStore := metrics.NewStore(db.SQL)
	a := app.New(
		planner.NewPlanStore(kv),
		planner.NewGenerator(factory, provider, cfg.Temperature),
		app.WithMetrics(metricsStore),
	)
	res, err := a.Start()
	if err != nil {
		db.Close()
		return nil, err
	}
	if res.RolledOver {
		log.Printf("New week %s: last week's plan was cleared", plan.CurrentWeekKey(time.Now()))
	}

	return &env{cfg: cfg, db: db, metrics: metricsStore, app: a}, nil
}

func main() {
	cmd := "tui"
	args := []string{}
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	e, err := setup()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer e.db.Close()

	switch cmd {
	case "tui":
		err = runTUI(e)
	case "generate":
		err = runGenerate(e, args)
	case "show":
		err = runShow(e, args)
	case "set-key":
		if len(args) != 1 {
			err = errors.New("usage: set-key <api key>")
			break
		}
		if err = e.app.SetAPIKey(args[0]); err == nil {
			fmt.Println("API key saved.")
		}
	case "reset":
		if err = e.app.DiscardPlan(); err == nil {
			fmt.Println("This week's plan was deleted. The API key is kept.")
		}
	case "metrics":
		fs := flag.NewFlagSet("metrics", flag.ExitOnError)
		days := fs.Int("days", 7, "Report the last N days")
		fs.Parse(args)

		var usage []metrics.DailyUsage
		usage, err = e.metrics.GetDailyUsage(*days)
		if err == nil {
			fmt.Print(metrics.FormatReport(usage, metrics.GetSysHealth(e.cfg.DataDir)))
		}
	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)

		var affected int64
		affected, err = e.metrics.Cleanup(*days)
		if err == nil {
			fmt.Printf("Successfully removed %d old metric records.\n", affected)
		}
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		e.db.Close()
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func runTUI(e *env) error {
	logger, err := logging.New(e.cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Redirect()
	logger.Printf("Session opened · provider %s · store %s", e.cfg.Provider, e.cfg.Store)

	m := tui.New(e.app, logger, e.cfg.Timeout+30*time.Second)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runGenerate(e *env, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	file := fs.String("f", "", "Read the schedule from a file (- for stdin)")
	url := fs.String("url", "", "Import the schedule from a web page")
	example := fs.Bool("example", false, "Use the example schedule")
	asJSON := fs.Bool("json", false, "Print the plan as JSON")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout+30*time.Second)
	defer cancel()

	switch {
	case *example:
		e.app.LoadExample()
	case *url != "":
		text, err := clipper.NewClipper(20*time.Second).FetchScheduleText(ctx, *url)
		if err != nil {
			return err
		}
		e.app.SetInput(text)
	case *file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read schedule: %w", err)
		}
		e.app.SetInput(string(data))
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read schedule: %w", err)
		}
		e.app.SetInput(string(data))
	default:
		e.app.SetInput(strings.Join(fs.Args(), " "))
	}

	if err := e.app.Generate(ctx); err != nil {
		var genErr *planner.GenerationError
		if errors.As(err, &genErr) {
			fmt.Fprintln(os.Stderr, genErr.Remediation())
		}
		return err
	}
	return printPlan(e.app.View().Plan, *asJSON)
}

func runShow(e *env, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the plan as JSON")
	fs.Parse(args)

	p := e.app.View().Plan
	if p == nil {
		fmt.Println("No plan for this week yet. Run `generate` first.")
		return nil
	}
	return printPlan(p, *asJSON)
}

func printPlan(p *plan.Plan, asJSON bool) error {
	if !asJSON {
		fmt.Print(plan.FormatText(p))
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func printUsage() {
	fmt.Println("Usage: ai-study-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  tui                Interactive planner (default)")
	fmt.Println("  generate           Generate this week's plan [-f file|-url url|-example] [-json] [schedule text]")
	fmt.Println("  show               Print this week's saved plan [-json]")
	fmt.Println("  set-key <key>      Save the API key")
	fmt.Println("  reset              Delete this week's plan, keeping the API key")
	fmt.Println("  metrics            Show generation usage [-days N]")
	fmt.Println("  metrics-cleanup    Remove old metric records [-days N]")
}
