package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/griffnb/nest-swag/internal/config"
	"github.com/griffnb/nest-swag/internal/console"
	"github.com/griffnb/nest-swag/internal/gen"
	"github.com/griffnb/nest-swag/internal/orchestrator"
	"github.com/griffnb/nest-swag/internal/schema"
	"github.com/griffnb/nest-swag/internal/store"
	"github.com/griffnb/nest-swag/internal/summarize"
)

const (
	configFlag           = "config"
	envFileFlag          = "envFile"
	searchDirFlag        = "dir"
	excludeFlag          = "exclude"
	generalInfoFlag      = "generalInfo"
	propertyStrategyFlag = "propertyStrategy"
	outputFlag           = "output"
	outputTypesFlag      = "outputTypes"
	overridesFileFlag    = "overridesFile"
	parseExtensionFlag   = "parseExtension"
	manifestFlag         = "manifest"
	titleFlag            = "title"
	versionFlag          = "apiVersion"
	hostFlag             = "host"
	basePathFlag         = "basePath"
	strictFlag           = "strict"
	pruneFlag            = "prune"
	databaseURLFlag      = "databaseUrl"
	uploadFlag           = "upload"
	summarizeFlag        = "summarize"
	quietFlag            = "quiet"
	debugFlag            = "debug"
	scopeFlag            = "scope"
	dumpFlag             = "dump"
)

var initFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Make the logger quiet.",
	},
	&cli.StringFlag{
		Name:  configFlag,
		Value: config.DefaultFile,
		Usage: "YAML config file, flags override its values",
	},
	&cli.StringSliceFlag{
		Name:  envFileFlag,
		Value: cli.NewStringSlice(".env"),
		Usage: "Env files loaded before reading the environment",
	},
	&cli.StringFlag{
		Name:    generalInfoFlag,
		Aliases: []string{"g"},
		Usage:   "Bootstrap file (main.ts) in which the DocumentBuilder is configured",
	},
	&cli.StringFlag{
		Name:    searchDirFlag,
		Aliases: []string{"d"},
		Usage:   "Directories you want to parse, comma separated (default: ./)",
	},
	&cli.StringFlag{
		Name:  excludeFlag,
		Usage: "Exclude directories and files when searching, comma separated",
	},
	&cli.StringFlag{
		Name:    propertyStrategyFlag,
		Aliases: []string{"p"},
		Usage:   "Property Naming Strategy like original,camelcase,pascalcase,snakecase",
	},
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Usage:   "Output directory for all the generated files (default: ./docs)",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Usage:   "Output types of generated files like json,yaml,docs (default: json,yaml)",
	},
	&cli.StringFlag{
		Name:  overridesFileFlag,
		Value: gen.DefaultOverridesFile,
		Usage: "File to read global type overrides from.",
	},
	&cli.StringFlag{
		Name:  parseExtensionFlag,
		Usage: "Source file extensions to parse, comma separated (default: .ts,.tsx)",
	},
	&cli.StringFlag{
		Name:  manifestFlag,
		Usage: "Pre-parsed source unit index (JSON or YAML) read instead of the search dirs",
	},
	&cli.StringFlag{Name: titleFlag, Usage: "API title"},
	&cli.StringFlag{Name: versionFlag, Usage: "API version"},
	&cli.StringFlag{Name: hostFlag, Usage: "API host"},
	&cli.StringFlag{Name: basePathFlag, Usage: "API base path"},
	&cli.BoolFlag{
		Name:  strictFlag,
		Usage: "Fail on duplicate routes instead of warning",
	},
	&cli.BoolFlag{
		Name:  pruneFlag,
		Usage: "Drop definitions no operation references from the OpenAPI output",
	},
	&cli.StringFlag{
		Name:    databaseURLFlag,
		EnvVars: []string{"DATABASE_URL"},
		Usage:   "Postgres URL the run is saved to",
	},
	&cli.BoolFlag{
		Name:  uploadFlag,
		Usage: "Upload written files to the configured S3 bucket",
	},
	&cli.BoolFlag{
		Name:  summarizeFlag,
		Usage: "Generate summaries for undocumented endpoints",
	},
	&cli.BoolFlag{
		Name:  debugFlag,
		Usage: "Enable debug mode, disabled by default",
	},
}

// loadConfig layers the config file, env files, the environment and the
// flags that were set, in that order.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(ctx.StringSlice(envFileFlag)...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx.String(configFlag))
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, os.Getenv)

	setString := func(dst *string, flag string) {
		if ctx.IsSet(flag) {
			*dst = ctx.String(flag)
		}
	}
	setList := func(dst *[]string, flag string) {
		if ctx.IsSet(flag) {
			*dst = config.SplitList(ctx.String(flag))
		}
	}
	setBool := func(dst *bool, flag string) {
		if ctx.IsSet(flag) {
			*dst = ctx.Bool(flag)
		}
	}

	setList(&cfg.SearchDirs, searchDirFlag)
	setList(&cfg.Excludes, excludeFlag)
	setList(&cfg.Extensions, parseExtensionFlag)
	setList(&cfg.OutputTypes, outputTypesFlag)
	setString(&cfg.Manifest, manifestFlag)
	setString(&cfg.OutputDir, outputFlag)
	setString(&cfg.PropNamingStrategy, propertyStrategyFlag)
	setString(&cfg.GeneralInfo, generalInfoFlag)
	setString(&cfg.Info.Title, titleFlag)
	setString(&cfg.Info.Version, versionFlag)
	setString(&cfg.Info.Host, hostFlag)
	setString(&cfg.Info.BasePath, basePathFlag)
	setString(&cfg.Store.DatabaseURL, databaseURLFlag)
	setBool(&cfg.Strict, strictFlag)
	setBool(&cfg.Prune, pruneFlag)
	setBool(&cfg.Artifacts.Enabled, uploadFlag)
	setBool(&cfg.Summarize.Enabled, summarizeFlag)
	if cfg.OverridesFile == "" || ctx.IsSet(overridesFileFlag) {
		cfg.OverridesFile = ctx.String(overridesFileFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initAction(ctx *cli.Context) error {
	if ctx.Bool(debugFlag) {
		console.Logger.DebugLevel = 1
	}
	console.Logger.Quiet = ctx.Bool(quietFlag)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if ctx.Bool(quietFlag) {
		logger = log.New(io.Discard, "", log.LstdFlags)
	}

	background := ctx.Context
	genConfig := &gen.Config{
		Debugger:           logger,
		SearchDir:          strings.Join(cfg.SearchDirs, ","),
		Excludes:           strings.Join(cfg.Excludes, ","),
		ParseExtension:     strings.Join(cfg.Extensions, ","),
		ManifestFile:       cfg.Manifest,
		MaxFileSize:        cfg.MaxFileSize,
		OutputDir:          cfg.OutputDir,
		OutputTypes:        cfg.OutputTypes,
		PropNamingStrategy: cfg.PropNamingStrategy,
		Strict:             cfg.Strict,
		OverridesFile:      cfg.OverridesFile,
		PruneDefinitions:   cfg.Prune,
		GeneralInfoFile:    cfg.GeneralInfo,
		Title:              cfg.Info.Title,
		Version:            cfg.Info.Version,
		Description:        cfg.Info.Description,
		Host:               cfg.Info.Host,
		BasePath:           cfg.Info.BasePath,
	}

	if cfg.Store.DatabaseURL != "" {
		pg, err := store.NewPostgres(background, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		genConfig.Store = pg
	}

	if cfg.Artifacts.Enabled {
		objects, err := store.NewObjectStore(store.ObjectStoreConfig{
			Endpoint:  cfg.Artifacts.Endpoint,
			Region:    cfg.Artifacts.Region,
			AccessKey: cfg.Artifacts.AccessKey,
			SecretKey: cfg.Artifacts.SecretKey,
			Bucket:    cfg.Artifacts.Bucket,
			Prefix:    cfg.Artifacts.Prefix,
			UseSSL:    cfg.Artifacts.UseSSL,
		})
		if err != nil {
			return err
		}
		genConfig.Uploader = objects
	}

	if cfg.Summarize.Enabled {
		summarizer, err := summarize.NewGemini(background, cfg.Summarize.APIKey, cfg.Summarize.Model)
		if err != nil {
			return err
		}
		genConfig.Summarizer = summarizer
	}

	doc, err := gen.New().Build(background, genConfig)
	if err != nil {
		return err
	}
	console.Logger.Info("$Green{done:} %d endpoints, %d schemas (run %s)", doc.Stats.Endpoints, doc.Stats.Schemas, doc.RunID)
	return nil
}

var resolveFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    searchDirFlag,
		Aliases: []string{"d"},
		Value:   "./",
		Usage:   "Directories you want to parse, comma separated",
	},
	&cli.StringFlag{
		Name:  manifestFlag,
		Usage: "Pre-parsed source unit index read instead of the search dirs",
	},
	&cli.StringFlag{
		Name:    scopeFlag,
		Aliases: []string{"s"},
		Usage:   "Unit whose imports and local declarations are preferred, e.g. users/user.dto.ts",
	},
	&cli.StringFlag{
		Name:    propertyStrategyFlag,
		Aliases: []string{"p"},
		Usage:   "Property Naming Strategy like original,camelcase,pascalcase,snakecase",
	},
	&cli.BoolFlag{
		Name:  dumpFlag,
		Usage: "Dump the resolved type tree instead of the schema",
	},
	&cli.BoolFlag{
		Name:  debugFlag,
		Usage: "Enable debug mode, disabled by default",
	},
}

// resolveOutput is what the resolve command prints.
type resolveOutput struct {
	Type    string             `json:"type"`
	Schema  *schema.JSONSchema `json:"schema"`
	Example interface{}        `json:"example"`
}

func resolveAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("resolve takes exactly one type reference, got %d", ctx.NArg())
	}
	typeText := ctx.Args().First()

	orc := orchestrator.New(&orchestrator.Config{
		ManifestFile:       ctx.String(manifestFlag),
		PropNamingStrategy: ctx.String(propertyStrategyFlag),
		Debug:              debugger(ctx),
	})
	if _, err := orc.Parse(ctx.Context, config.SplitList(ctx.String(searchDirFlag))); err != nil {
		return err
	}

	t := orc.Resolver().Resolve(typeText, ctx.String(scopeFlag))
	if ctx.Bool(dumpFlag) {
		spew.Fdump(ctx.App.Writer, t)
		return nil
	}

	builder := orc.SchemaBuilder()
	s := builder.Generator().Generate(t)
	out, err := json.MarshalIndent(resolveOutput{
		Type:    typeText,
		Schema:  s,
		Example: builder.Examples().Generate(s),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(out))
	return err
}

func debugger(ctx *cli.Context) orchestrator.Debugger {
	if ctx.Bool(debugFlag) {
		console.Logger.DebugLevel = 1
	}
	return console.Logger
}

func main() {
	app := cli.NewApp()
	app.Name = "nest-swag"
	app.Version = gen.Version
	app.Usage = "Automatically generate Swagger 2.0 documentation for NestJS applications."
	app.Commands = []*cli.Command{
		{
			Name:    "init",
			Aliases: []string{"i"},
			Usage:   "Generate swagger documentation",
			Action:  initAction,
			Flags:   initFlags,
		},
		{
			Name:      "resolve",
			Aliases:   []string{"r"},
			Usage:     "Resolve one type reference and print its schema and example",
			ArgsUsage: "<type>",
			Action:    resolveAction,
			Flags:     resolveFlags,
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
