package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scrape-dash-go/pkg/cli"
	"scrape-dash-go/pkg/cli/format"
	"scrape-dash-go/pkg/scraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, format.ErrorMessage(err))
		var apiErr *scraper.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, apiErr.UserMessage())
		}
		os.Exit(1)
	}
}
