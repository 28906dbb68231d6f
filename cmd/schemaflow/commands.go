package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/schemaflow/internal/demo"
	"github.com/BaSui01/schemaflow/structured"
)

// =============================================================================
// 🖥️ 示例命令
// =============================================================================

func runDemo(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var opts options
	opts.register(fs)
	_ = fs.Parse(args)

	d, _ := demo.Lookup(name)
	input := strings.Join(fs.Args(), " ")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer a.close()

	res, err := a.runOne(ctx, d, input)
	if err != nil {
		printFailure(os.Stderr, d.Name, err)
		return 1
	}
	if err := printResult(os.Stdout, res); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to print result: %v\n", err)
		return 1
	}
	return 0
}

// runAll 并发运行全部示例。单个示例失败不会取消其他示例。
func runAll(args []string) int {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	var opts options
	opts.register(fs)
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer a.close()

	demos := demo.All()
	results := make([]*structured.Result, len(demos))
	failures := make([]error, len(demos))

	var g errgroup.Group
	for i, d := range demos {
		g.Go(func() error {
			results[i], failures[i] = a.runOne(ctx, d, "")
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	for i, d := range demos {
		fmt.Fprintf(os.Stdout, "== %s (%s)\n", d.Name, d.Provider)
		if failures[i] != nil {
			printFailure(os.Stdout, d.Name, failures[i])
			code = 1
		} else if err := printResult(os.Stdout, results[i]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to print result: %v\n", err)
			code = 1
		}
	}
	return code
}

func (a *app) runOne(ctx context.Context, d demo.Demo, input string) (*structured.Result, error) {
	adapter, err := a.newAdapter(d.Provider)
	if err != nil {
		return nil, err
	}
	p, err := a.newPipeline(d, adapter)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, d.Prompt(input), d.Descriptor, d.Generation)
	if err != nil {
		a.logger.Debug("demo failed", zap.String("demo", d.Name), zap.Error(err))
		return nil, err
	}
	return res, nil
}

// =============================================================================
// 📐 schema 命令
// =============================================================================

func runSchema(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: schemaflow schema <%s>\n", strings.Join(demo.Names(), "|"))
		return 1
	}
	d, ok := demo.Lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown demo: %s\n", args[0])
		return 1
	}
	out, err := d.Descriptor.JSONSchema().ToJSONIndent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render schema: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// =============================================================================
// 🖨️ 输出
// =============================================================================

func printResult(w io.Writer, res *structured.Result) error {
	data, err := json.MarshalIndent(res.Record, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printFailure(w io.Writer, name string, err error) {
	var se *structured.Error
	if errors.As(err, &se) {
		fmt.Fprintf(w, "%s failed: %s\n", name, se.Kind)
		fmt.Fprintf(w, "  %v\n", se)
		return
	}
	fmt.Fprintf(w, "%s failed: %v\n", name, err)
}
