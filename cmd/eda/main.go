// Command eda loads a train/test pair, prints the exploratory views, writes
// the merged CSV and JSON summary (and optionally an XLSX report and a
// database snapshot), and can keep serving the JSON API afterwards.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	// register all backends with the storage factory.
	_ "eda/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout); err != nil {
		stop()
		fatalf("%v", err)
	}
}

func fatalf(format string, a ...any) {
	log.SetFlags(0)
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
