package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) migrate(ctx context.Context) error {
	names, err := cli.migrateFunc(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(cli.out, "index %s ready\n", name)
	}
	return nil
}
