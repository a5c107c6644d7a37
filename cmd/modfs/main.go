// modfs inspects the mod overlay built from a mods directory: the resolved
// load order, the merged directory tree, and which mod serves each file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	internal "github.com/ZanzyTHEbar/mod-overlay/modfs"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/config"
	"github.com/ZanzyTHEbar/mod-overlay/modfs/mods"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(args []string, out io.Writer) error {
	var (
		configPath string
		root       string
		logLevel   string
		recursive  bool
	)

	flagSet := pflag.NewFlagSet(internal.DefaultAppName, pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "config file (default: search ., .., etc/modfs, ~/.config/modfs)")
	flagSet.StringVarP(&root, "root", "r", "", "mods directory (overrides mods.root)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
	flagSet.BoolVarP(&recursive, "recursive", "R", false, "ls: include subdirectories")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, out)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, out)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet, out)
		return errUsage
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if root != "" {
		cfg.Mods.Root = root
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger := internal.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	manager, err := mods.Load(cfg.Mods.Root, mods.WithLogger(logger), mods.FromConfig(cfg.Mods))
	if err != nil {
		return err
	}
	defer manager.Close()

	command, params := rest[0], rest[1:]
	switch command {
	case "order":
		return printOrder(manager, out)
	case "ls":
		dir := ""
		if len(params) > 0 {
			dir = params[0]
		}
		return printListing(manager, out, dir, recursive)
	case "cat":
		if len(params) != 1 {
			return fmt.Errorf("%w: cat <path>", errUsage)
		}
		data, err := manager.GetFile(params[0])
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "layers":
		if len(params) != 1 {
			return fmt.Errorf("%w: layers <path>", errUsage)
		}
		return printLayers(manager, out, params[0])
	case "stat":
		if len(params) != 1 {
			return fmt.Errorf("%w: stat <path>", errUsage)
		}
		return printStat(manager, out, params[0])
	case "find":
		if len(params) != 1 {
			return fmt.Errorf("%w: find <prefix>", errUsage)
		}
		return printLines(out, manager.FindLocations(params[0]))
	case "ext":
		if len(params) == 0 {
			return fmt.Errorf("%w: ext <extension>...", errUsage)
		}
		return printLines(out, manager.GetFilesWithExtension(params...))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printOrder(manager *mods.Manager, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tNAME\tFILES\tDEPENDS ON\tROOT")
	for _, mod := range manager.Mods() {
		id := mod.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			mod.Rank, id, mod.Name, mod.Files, strings.Join(mod.Dependencies, ","), mod.Root)
	}
	return w.Flush()
}

func printListing(manager *mods.Manager, out io.Writer, dir string, recursive bool) error {
	var (
		files []string
		err   error
	)
	if recursive {
		files, err = manager.GetFilesInDirectoryAndSubdir(dir)
	} else {
		files, err = manager.GetFilesInDirectory(dir)
	}
	if err != nil {
		return err
	}
	return printLines(out, files)
}

func printLayers(manager *mods.Manager, out io.Writer, p string) error {
	locations, err := manager.GetFilesWithLocations(p)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tBYTES\tROOT")
	for i, location := range locations {
		fmt.Fprintf(w, "%d\t%d\t%s\n", i, len(location.Data), location.Root)
	}
	return w.Flush()
}

func printStat(manager *mods.Manager, out io.Writer, p string) error {
	full, err := manager.GetAbsoluteFullPath(p)
	if err != nil {
		return err
	}
	modified, err := manager.GetLastModified(p)
	if err != nil {
		return err
	}
	locations, err := manager.GetFilesWithLocations(p)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "path:     %s\n", full)
	fmt.Fprintf(out, "modified: %d\n", modified)
	fmt.Fprintf(out, "layers:   %d\n", len(locations))
	return nil
}

func printLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet, out io.Writer) {
	fmt.Fprintf(out, `modfs inspects the overlay of the mods found in a mods directory.

Usage:
  modfs [flags] <command> [args]

Commands:
  order             list mods in load order, highest priority first
  ls [dir]          list files in a directory (-R for subdirectories)
  cat <path>        print the winning variant of a file
  layers <path>     list every mod providing a file, highest priority first
  stat <path>       show where the winning variant lives and when it changed
  find <prefix>     list files whose path starts with prefix
  ext <ext>...      list files with any of the extensions

Flags:
`)
	flagSet.SetOutput(out)
	flagSet.PrintDefaults()
}
