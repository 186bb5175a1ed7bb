// Command logjson reads log lines, extracts embedded JSON from them and
// writes one JSON record per line.
//
// Usage:
//
//	logjson [flags] < input.log > output.jsonl
//
// Settings come from, in increasing priority: defaults, a YAML config file
// (-config or LOGJSON_CONFIG), environment variables (optionally loaded from
// a .env file) and command-line flags.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cybergodev/logjson"
	"github.com/cybergodev/logjson/action"
	"github.com/cybergodev/logjson/internal"
)

const (
	batchSize     = 1024
	maxLineLength = 1024 * 1024
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "logjson:", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	envFile         string
	configPath      string
	inputPath       string
	cookie          string
	container       string
	compact         bool
	messageField    string
	altMessageField string
	variable        string
	userawmsg       bool
	repair          bool
	maxDepth        int
	workers         int
	withUUID        bool
	stats           bool
	logLevel        string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("logjson", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f cliFlags
	fs.StringVar(&f.envFile, "env", ".env", "environment file to load if present")
	fs.StringVar(&f.configPath, "config", "", "YAML action config file")
	fs.StringVar(&f.inputPath, "input", "", "input file (default stdin)")
	fs.StringVar(&f.cookie, "cookie", logjson.DefaultCookie, "JSON cookie; empty disables the check")
	fs.StringVar(&f.container, "container", logjson.DefaultContainer, "container for results ($!, $. or $/ prefixed)")
	fs.BoolVar(&f.compact, "compact", false, "drop empty strings, arrays, objects and nulls")
	fs.StringVar(&f.messageField, "message-field", "", "field holding nested JSON to resolve")
	fs.StringVar(&f.altMessageField, "alt-message-field", "", "field receiving the original nested representation")
	fs.StringVar(&f.variable, "variable", "", "property to read the JSON from instead of the message")
	fs.BoolVar(&f.userawmsg, "userawmsg", false, "read the JSON from the raw record")
	fs.BoolVar(&f.repair, "repair", false, "try to repair malformed JSON")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fs.IntVar(&f.workers, "workers", 0, "number of concurrent workers")
	fs.BoolVar(&f.withUUID, "uuid", false, "add a unique id to every record")
	fs.BoolVar(&f.stats, "stats", false, "print statistics to stderr at exit")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { setFlags[fl.Name] = true })

	if err := loadEnv(f.envFile, setFlags["env"]); err != nil {
		return err
	}

	level, err := parseLevel(envOr("LOGJSON_LOG_LEVEL", f.logLevel, setFlags["log-level"]))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := buildConfig(&f, setFlags)
	if err != nil {
		return err
	}

	act, err := action.New(cfg, action.WithLogger(logger))
	if err != nil {
		return err
	}
	runner, err := action.NewRunner(act, cfg.Workers)
	if err != nil {
		return err
	}
	defer runner.Close()

	in := stdin
	if f.inputPath != "" {
		file, err := os.Open(f.inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		in = file
	}

	out := bufio.NewWriter(stdout)
	if err := process(ctx, runner, in, out, f.withUUID); err != nil {
		out.Flush()
		return err
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if f.stats {
		fmt.Fprintln(stderr, act.MetricsSummary())
	}
	return nil
}

// buildConfig layers config file, environment and flags.
func buildConfig(f *cliFlags, setFlags map[string]bool) (*action.Config, error) {
	cfg := action.DefaultConfig()
	path := envOr("LOGJSON_CONFIG", f.configPath, setFlags["config"])
	if path != "" {
		loaded, err := action.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv("LOGJSON_WORKERS"); v != "" && !setFlags["workers"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOGJSON_WORKERS: %w", err)
		}
		cfg.Workers = n
	}

	if setFlags["cookie"] {
		cookie := f.cookie
		cfg.Cookie = &cookie
	}
	if setFlags["container"] {
		cfg.Container = f.container
	}
	if setFlags["compact"] {
		cfg.Compact = f.compact
	}
	if setFlags["message-field"] {
		cfg.MessageField = f.messageField
	}
	if setFlags["alt-message-field"] {
		cfg.AltMessageField = f.altMessageField
	}
	if setFlags["variable"] {
		cfg.Variable = f.variable
	}
	if setFlags["userawmsg"] {
		cfg.UseRawMsg = f.userawmsg
	}
	if setFlags["repair"] {
		cfg.Repair = f.repair
	}
	if setFlags["max-depth"] {
		cfg.MaxDepth = f.maxDepth
	}
	if setFlags["workers"] {
		cfg.Workers = f.workers
	}
	return cfg, cfg.Validate()
}

// process reads lines in batches, runs them and writes the records in input
// order.
func process(ctx context.Context, runner *action.Runner, in io.Reader, out io.Writer, withUUID bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	batch := make([]*action.Message, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := runner.ProcessAll(ctx, batch); err != nil {
			return err
		}
		for _, msg := range batch {
			if err := writeRecord(out, msg, withUUID); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		batch = append(batch, action.NewMessage(line, ""))
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return flush()
}

func writeRecord(out io.Writer, msg *action.Message, withUUID bool) error {
	record := logjson.NewObject()
	record.Set("msg", logjson.String(msg.Msg))
	record.Set("parsesuccess", logjson.Bool(msg.ParseSuccess))
	if withUUID {
		record.Set("uuid", logjson.String(msg.UUID()))
	}
	if msg.Vars().Len() > 0 {
		record.Set("$!", logjson.ObjectValue(msg.Vars()))
	}
	if msg.Locals().Len() > 0 {
		record.Set("$.", logjson.ObjectValue(msg.Locals()))
	}

	buf := internal.GetByteSlice()
	defer internal.PutByteSlice(buf)
	*buf = logjson.AppendObject(*buf, record, nil)
	*buf = append(*buf, '\n')
	if _, err := out.Write(*buf); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// loadEnv loads an env file. A missing default file is not an error.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// envOr returns the environment value of key unless the flag was set
// explicitly.
func envOr(key, flagValue string, flagSet bool) string {
	if flagSet {
		return flagValue
	}
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return flagValue
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
