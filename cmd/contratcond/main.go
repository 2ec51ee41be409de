package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	contratcond "github.com/edesteves10/contrat-cond"
	"github.com/edesteves10/contrat-cond/internal/prompt"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

const usage = `usage: contratcond <command> [flags]

commands:
  fill     prompt for a contract, validate it and print the submission
  render   render a contract record (YAML) to text and optionally PDF
  serve    expose the form controller over HTTP`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "fill":
		err = runFill(ctx, os.Args[2:])
	case "render":
		err = runRender(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if errors.Is(err, prompt.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runFill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	pdfPath := fs.String("pdf", "", "write the contract PDF to this file")
	attempts := fs.Int("attempts", 3, "correction rounds before giving up")
	_ = fs.Parse(args)

	app, err := contratcond.New(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	return fill(ctx, app, prompt.NewSurveyDriver(os.Stdout), *attempts, *pdfPath, os.Stdout)
}

// fill runs the prompt session, prints the submission and offers the preview.
func fill(ctx context.Context, app *contratcond.App, driver prompt.Driver, attempts int, pdfPath string, out io.Writer) error {
	session := app.Session(driver, prompt.WithAttempts(attempts))
	submission, err := session.Fill(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n%s\n", submission.Target.Method, submission.Target.Path, submission.Encode())

	if _, err := session.ConfirmPreview(ctx); err != nil {
		return err
	}
	if pdfPath != "" {
		return writePDF(ctx, app, pdfPath, out)
	}
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	recordPath := fs.String("record", "", "YAML contract record")
	pdfPath := fs.String("pdf", "", "write the contract PDF to this file")
	_ = fs.Parse(args)

	if *recordPath == "" {
		return errors.New("-record is required")
	}
	raw, err := os.ReadFile(*recordPath)
	if err != nil {
		return err
	}
	var record model.Record
	if err := yaml.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("decode %s: %w", *recordPath, err)
	}

	app, err := contratcond.New(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctl := app.Controller()
	ctl.ApplyRecord(record)
	doc, err := ctl.Preview()
	if err != nil {
		return err
	}
	fmt.Print(doc.Text)
	if *pdfPath != "" {
		return writePDF(ctx, app, *pdfPath, os.Stdout)
	}
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(args)

	app, err := contratcond.New(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	listen := app.Config().Server.Addr
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger().Info("listening", "addr", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writePDF(ctx context.Context, app *contratcond.App, path string, out io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	doc, err := app.Controller().Export(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Contract written to %s (%s)\n", path, doc.Filename)
	return nil
}
