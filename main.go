package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/km-arc/go-scoped/app"
	kernel "github.com/km-arc/go-scoped/framework/app"
	"github.com/km-arc/go-scoped/framework/container"
)

var version = "dev"

// CLI flags are all optional; with none the program runs the demo with the
// environment (and .env) configuration.
type CLI struct {
	EnvFile  []string         `kong:"name='env-file',help='Dotenv files to load. Defaults to .env when present.'"`
	LogLevel string           `kong:"short='l',help='Override LOG_LEVEL.'"`
	Version  kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("go-scoped"),
		kong.Description("Resolves a scoped service and a singleton calculator from the container and prints their results."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(run(os.Stdout, cli))
}

// run prints, one per line: the service result, the service symbol and an
// independent calculator result.
func run(w io.Writer, cli CLI) error {
	application, err := kernel.New(kernel.Options{
		EnvFiles: cli.EnvFile,
		LogLevel: cli.LogLevel,
	}, &app.ServiceProvider{})
	if err != nil {
		return err
	}
	defer application.Close()

	return application.InScope(func(s *container.Scope) error {
		service, err := container.Resolve[*app.Service](s)
		if err != nil {
			return err
		}
		calculator, err := container.Resolve[app.Calculator](s)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, service.Call())
		fmt.Fprintln(w, service.Symbol)
		fmt.Fprintln(w, calculator.Calculate())
		return nil
	})
}
