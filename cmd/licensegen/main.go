// Command licensegen administers the license registry document that is
// published at the registry URL.
//
//	licensegen -registry Licencias.txt create -desc "Distribuidora Norte"
//	licensegen -registry Licencias.txt list
//	licensegen -registry Licencias.txt toggle ABCD-1234-EFGH-5678
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"salespulse/internal/config"
	"salespulse/internal/license"
)

const usage = `Usage: licensegen [-registry FILE] <command>

Commands:
  create [-inactive] [-desc TEXT]   add a new license code
  list                              list every license code
  toggle CODE                       activate or deactivate a code
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("licensegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	registryPath := fs.String("registry", config.RegistryFileName, "path of the registry document")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	registry := license.NewRegistryFile(*registryPath)
	command, rest := fs.Arg(0), fs.Args()[1:]

	switch command {
	case "create":
		return create(registry, rest, stdout, stderr)
	case "list":
		return list(registry, stdout)
	case "toggle":
		if len(rest) != 1 {
			return fmt.Errorf("toggle needs exactly one license code")
		}
		record, err := registry.Toggle(rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Licencia %s: %s\n", record.Codigo, stateLabel(record.Activo))
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func create(registry *license.RegistryFile, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inactive := fs.Bool("inactive", false, "create the code deactivated")
	desc := fs.String("desc", "", "free text describing the customer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	record, err := registry.Create(!*inactive, *desc)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Licencia creada: %s (%s)\n", record.Codigo, stateLabel(record.Activo))
	return nil
}

func list(registry *license.RegistryFile, stdout io.Writer) error {
	records, err := registry.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "No hay licencias registradas")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Codigo\tEstado\tCreada\tModificada\tDescripcion")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Codigo, stateLabel(r.Activo), r.Creada, r.Modificada, r.Descripcion)
	}
	return tw.Flush()
}

func stateLabel(active bool) string {
	if active {
		return "activa"
	}
	return "inactiva"
}
