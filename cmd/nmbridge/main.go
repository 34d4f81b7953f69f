package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	singleinstance "github.com/allan-simon/go-singleinstance"

	"github.com/rupor-github/nmbridge/bridge"
	"github.com/rupor-github/nmbridge/manifest"
	"github.com/rupor-github/nmbridge/misc"
	"github.com/rupor-github/nmbridge/nmsg"
	"github.com/rupor-github/nmbridge/util"
)

const (
	exitSuccess = iota
	exitFlagParseError
	exitConfigError
	exitOriginError
	exitServeError
	exitCommandError
	exitHelp
)

type command int

const (
	cmdServe command = iota + 1
	cmdInstall
	cmdUninstall
	cmdManifest
	cmdVersion
)

func (c command) String() string {
	switch c {
	case cmdServe:
		return "serve one native messaging session on stdin/stdout"
	case cmdInstall:
		return "register the host manifest with configured browsers"
	case cmdUninstall:
		return "remove the host manifest registrations"
	case cmdManifest:
		return "print the host manifests"
	case cmdVersion:
		return "print program version"
	default:
		return fmt.Sprintf("bad command %d", c)
	}
}

var (
	aConfig string
	aHelp   bool
	aDebug  bool
	title   = "nmbridge"
	cli     = flag.NewFlagSet(title, flag.ContinueOnError)
)

func getCommand(args []string) (cmd command, launched bool, err error) {

	for i, v := range args[1:] {
		switch v {
		case "serve":
			cmd = cmdServe
		case "install":
			cmd = cmdInstall
		case "uninstall":
			cmd = cmdUninstall
		case "manifest":
			cmd = cmdManifest
		case "version":
			cmd = cmdVersion
		default:
			continue
		}
		copy(args[i+1:], args[i+2:])
		args[len(args)-1] = ""
		return
	}

	// No command word. A browser start never carries one: Chromium passes
	// the extension origin, Firefox the manifest path and extension ID.
	if bridge.ExtensionOrigin(args[1:]) != "" {
		return cmdServe, true, nil
	}

	cli.Usage()

	err = errors.New("unknown command")
	return
}

func processCommandLine(args []string) (cmd command, origin string, err error) {

	var launched bool
	cmd, launched, err = getCommand(args)
	if err != nil {
		return
	}
	if launched {
		// Browser arguments are not flags, leave them alone.
		origin = bridge.ExtensionOrigin(args[1:])
		return
	}
	args = args[:len(args)-1]

	if err = cli.Parse(args[1:]); err != nil {
		return
	}
	if cli.NArg() > 0 {
		err = fmt.Errorf("unexpected argument %q", cli.Arg(0))
	}
	return
}

// hostManifest assembles the registration record install, uninstall and
// manifest work from.
func hostManifest(cfg *config) (*manifest.Host, error) {

	path := cfg.Manifest.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("cannot determine host binary path: %w", err)
		}
		if path, err = filepath.Abs(exe); err != nil {
			return nil, err
		}
	}
	return &manifest.Host{
		Name:        cfg.Manifest.Name,
		Description: cfg.Manifest.Description,
		Path:        path,
		Origins:     cfg.AllowedOrigins,
		Extensions:  cfg.AllowedExtensions,
	}, nil
}

func installManifests(home string, cfg *config) error {

	h, err := hostManifest(cfg)
	if err != nil {
		return err
	}
	browsers, err := manifest.ParseBrowsers(cfg.Manifest.Browsers)
	if err != nil {
		return err
	}
	written, err := manifest.Install(home, h, browsers)
	for _, w := range written {
		fmt.Printf("Installed %s\n", w)
	}
	return err
}

func uninstallManifests(home string, cfg *config) error {

	browsers, err := manifest.ParseBrowsers(cfg.Manifest.Browsers)
	if err != nil {
		return err
	}
	removed, err := manifest.Uninstall(home, cfg.Manifest.Name, browsers)
	for _, r := range removed {
		fmt.Printf("Removed %s\n", r)
	}
	return err
}

func printManifests(cfg *config) error {

	h, err := hostManifest(cfg)
	if err != nil {
		return err
	}
	browsers, err := manifest.ParseBrowsers(cfg.Manifest.Browsers)
	if err != nil {
		return err
	}
	for _, b := range browsers {
		data, err := h.Render(b)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s", b, data)
	}
	return nil
}

func serve(home string, cfg *config, origin string) int {

	allowed := append(append([]string(nil), cfg.AllowedOrigins...), cfg.AllowedExtensions...)
	if !bridge.OriginAllowed(origin, allowed) {
		log.Printf("Refusing origin %q\n", origin)
		return exitOriginError
	}

	if cfg.Exclusive {
		dir := filepath.Join(home, ".nmbridge")
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Cannot create %s: %v\n", dir, err)
			return exitServeError
		}
		lock, err := singleinstance.CreateLockFile(filepath.Join(dir, title+".lock"))
		if err != nil {
			log.Print("Another instance is already serving\n")
			return exitServeError
		}
		defer lock.Close()
	}

	log.Printf("Serving origin %q\n", origin)

	svc := bridge.NewService(cfg.LineEnding, cfg.BlockedSchemes)
	if err := nmsg.NewHost(os.Stdin, os.Stdout).Run(svc.Handle); err != nil {
		log.Printf("Session failed: %v\n", err)
		return exitServeError
	}

	log.Print("Session ended\n")
	return exitSuccess
}

func run() int {

	cmd, origin, err := processCommandLine(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n\n*** ERROR: %s\n", err.Error())
		return exitFlagParseError
	}

	if aHelp {
		cli.Usage()
		return exitHelp
	}

	// Version needs no configuration, report it even when the rest of the
	// environment is broken.
	if cmd == cmdVersion {
		fmt.Printf("%s (%s) %s\n", misc.GetVersion(), runtime.Version(), misc.GetGitHash())
		return exitSuccess
	}

	// Early log setup so configuration loading is visible with -debug;
	// reinitialized below once the file settings are known.
	util.NewLogWriter(title, 0, aDebug, "")

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n\n*** ERROR: %s\n", err.Error())
		return exitConfigError
	}

	cfg, err := loadConfig(home, aConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n\n*** ERROR: %s\n", err.Error())
		return exitConfigError
	}
	if aDebug {
		cfg.Debug = true
	}

	if err := util.NewLogWriter(title, 0, cfg.Debug, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "\n\n*** ERROR: %s\n", err.Error())
		return exitConfigError
	}

	switch cmd {
	case cmdServe:
		return serve(home, cfg, origin)
	case cmdInstall:
		err = installManifests(home, cfg)
	case cmdUninstall:
		err = uninstallManifests(home, cfg)
	case cmdManifest:
		err = printManifests(cfg)
	default:
		err = errors.New("this should never happen")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "\n\n*** ERROR: %s\n", err.Error())
		return exitCommandError
	}
	return exitSuccess
}

func main() {

	cli.BoolVar(&aHelp, "help", false, "Show help")
	cli.StringVar(&aConfig, "config", "", "Path to configuration file (default \"$HOME/.nmbridge/config.toml\")")
	cli.BoolVar(&aDebug, "debug", false, "Print debugging information")

	cli.Usage = func() {
		var buf strings.Builder
		cli.SetOutput(&buf)
		fmt.Fprintf(&buf, `
nmbridge - clipboard and URL bridge over browser native messaging

Version:
    %s (%s) %s
`, misc.GetVersion(), runtime.Version(), misc.GetGitHash())

		fmt.Fprintf(&buf, `
Usage:
    nmbridge [options]... COMMAND

Commands:

    serve        - %s
    install      - %s
    uninstall    - %s
    manifest     - %s
    version      - %s

Options:

`, cmdServe, cmdInstall, cmdUninstall, cmdManifest, cmdVersion)

		cli.PrintDefaults()
		fmt.Fprint(os.Stderr, buf.String())
	}

	os.Exit(run())
}
