package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accounts/internal/admin"
)

func main() {
	if err := admin.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
