package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/matreq/internal/logger"
	"github.com/cognicore/matreq/pkg/matreq"
	"github.com/cognicore/matreq/pkg/matreq/config"
	"github.com/cognicore/matreq/pkg/matreq/stock"
	"github.com/cognicore/matreq/pkg/matreq/stock/sqlite"
)

type options struct {
	tablesDir    string
	templatesDir string
	inventory    string
	dbPath       string
	seed         string
	lang         string
	logMode      string
	threshold    float64
}

func main() {
	env, err := config.ParseEnv()
	if err != nil {
		log.Fatal(err)
	}

	var (
		tablesDir    = flag.String("tables", env.TablesDir, "Lookup table directory (default: built-in tables)")
		templatesDir = flag.String("templates", env.TemplatesDir, "Response template directory (default: built-in templates)")
		inventory    = flag.String("inventory", env.InventoryPath, "Inventory YAML file")
		dbPath       = flag.String("db", env.DBPath, "Inventory SQLite database (takes precedence over --inventory)")
		seed         = flag.String("seed", "", "Seed the --db inventory from this YAML file before starting")
		language     = flag.String("lang", env.Language, "Operator language (en, hi, kn, ta, te, mr, gu, pa)")
		logMode      = flag.String("log", env.LogMode, "Log mode: off, dev or prod")
		query        = flag.String("query", "", "One-shot request (non-interactive mode)")
		asJSON       = flag.Bool("json", false, "Also print the structured request as JSON")
	)
	flag.Parse()

	if *inventory == "" && *dbPath == "" {
		log.Fatal("--inventory or --db required")
	}
	if *seed != "" && *dbPath == "" {
		log.Fatal("--seed requires --db")
	}
	if !matreq.IsSupported(*language) {
		log.Fatalf("unsupported language %q (supported: %s)", *language, strings.Join(matreq.Supported(), ", "))
	}

	ctx := context.Background()

	engine, cleanup, err := buildEngine(ctx, options{
		tablesDir:    *tablesDir,
		templatesDir: *templatesDir,
		inventory:    *inventory,
		dbPath:       *dbPath,
		seed:         *seed,
		lang:         *language,
		logMode:      *logMode,
		threshold:    env.FuzzyThreshold,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	// One-shot mode
	if *query != "" {
		if err := executeRequest(ctx, os.Stdout, engine, *query, *language, *asJSON); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Material Request CLI")
	fmt.Printf("  Language: %s\n", *language)
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a material request (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if err := executeRequest(ctx, os.Stdout, engine, text, *language, *asJSON); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

func executeRequest(ctx context.Context, w io.Writer, engine *matreq.Engine, text, language string, asJSON bool) error {
	req, err := engine.ProcessRequest(ctx, text, language)
	if err != nil {
		return fmt.Errorf("process request: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, engine.GenerateResponse(req, language))
	fmt.Fprintln(w)

	if asJSON {
		data, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		fmt.Fprintln(w, string(data))
		fmt.Fprintln(w)
	}
	return nil
}

func buildEngine(ctx context.Context, opts options) (*matreq.Engine, func(), error) {
	lg, err := logger.New(opts.logMode)
	if err != nil {
		return nil, nil, err
	}

	if opts.seed != "" {
		if err := seedDatabase(ctx, opts.dbPath, opts.seed); err != nil {
			return nil, nil, err
		}
		lg.Info("inventory seeded", zap.String("db", opts.dbPath), zap.String("from", opts.seed))
	}

	loader := config.Loader{
		TablesDir:     opts.tablesDir,
		TemplatesDir:  opts.templatesDir,
		InventoryPath: opts.inventory,
		DBPath:        opts.dbPath,
	}
	components, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	engine, err := matreq.New(matreq.Options{
		Tables:         components.Tables,
		Composer:       components.Composer,
		FuzzyThreshold: opts.threshold,
		Inventory:      components.Inventory,
		Logger:         lg,
	})
	if err != nil {
		components.Close()
		return nil, nil, err
	}
	lg.Debug("engine ready",
		zap.String("tables_version", engine.Tables().Version),
		zap.Int("materials", engine.Tables().Materials.Len()),
		zap.String("language", opts.lang),
	)

	cleanup := func() {
		if err := components.Close(); err != nil {
			lg.Warn("close inventory", zap.Error(err))
		}
		_ = lg.Sync()
	}

	return engine, cleanup, nil
}

func seedDatabase(ctx context.Context, dbPath, yamlPath string) error {
	snap, err := stock.LoadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	store, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open inventory db: %w", err)
	}
	defer store.Close()
	if err := store.Seed(ctx, snap); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	return nil
}
