package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/branchtint/cmd/branchtint"
	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := branchtint.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorStyle := style.ErrorStyle
		if errors.SeverityOf(err) == errors.SeverityWarning {
			errorStyle = style.WarningStyle
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
