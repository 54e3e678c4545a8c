package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/judwhite/go-svc"
	"github.com/jxo-me/curl-dyndns/cmd/ddns/cliutil"
	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/config/parsing"
	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
	BuildType = ""
)

func main() {
	bInfo := cliutil.GetBuildInfo(BuildType, Version)

	app := &cli.App{}
	app.Name = "curl-dyndns"
	app.Usage = "Keep a dynamic DNS record current by calling an update url"
	app.UsageText = "curl-dyndns [global options] [command] [command options]"
	app.Version = fmt.Sprintf("%s (built %s%s)", Version, BuildTime, bInfo.GetBuildTypeMsg())
	app.Description = `curl-dyndns looks up the public IPv4 address through an echo service and the
	IPv6 address from a local interface, and calls the configured update url whenever
	they change. The url may contain %ip4% and %ip6%.`
	app.Flags = flags()
	app.Before = loadDotEnv
	app.Action = cliutil.Action(runAction(bInfo))
	app.Commands = commands(bInfo)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "configuration file",
			EnvVars: []string{config.ConfigFilePathENV},
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "dotenv file loaded before reading the configuration",
			Value:   ".env",
			EnvVars: []string{"DDNS_ENV_FILE"},
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "update url, may contain %ip4% and %ip6%",
		},
		&cli.IntFlag{
			Name:  "interval",
			Usage: fmt.Sprintf("scan interval in minutes, at least %d", consts.MinScanIntervalMinutes),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn, error or fatal",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve prometheus metrics on this address, e.g. :9090",
		},
	}
}

// loadDotEnv 加载 .env, 文件不存在时忽略
func loadDotEnv(c *cli.Context) error {
	file := c.String("env-file")
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(file), "load %s", file)
}

func commands(bInfo *cliutil.BuildInfo) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "run",
			Usage:  "Run the updater, re-reading the config file when it changes (default)",
			Action: cliutil.Action(runAction(bInfo)),
		},
		{
			Name:   "once",
			Usage:  "Run a single update cycle and exit, non-zero when it failed",
			Action: cliutil.Action(onceAction),
		},
		{
			Name:  "config",
			Usage: "Print the resolved configuration",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Value: "yaml",
					Usage: "yaml or json",
				},
			},
			Action: cliutil.Action(configAction),
		},
		{
			Name: "version",
			Action: func(c *cli.Context) error {
				cli.ShowVersion(c)
				return nil
			},
			Usage: "Print the version",
		},
	}
}

func runAction(bInfo *cliutil.BuildInfo) cli.ActionFunc {
	return func(c *cli.Context) error {
		source, err := newConfigSource(c)
		if err != nil {
			return err
		}
		p := &program{source: source, buildInfo: bInfo}
		return svc.Run(p, syscall.SIGINT, syscall.SIGTERM)
	}
}

func onceAction(c *cli.Context) error {
	source, err := newConfigSource(c)
	if err != nil {
		return err
	}
	cfg, err := source.Load()
	if err != nil {
		return err
	}
	log := logFromConfig(cfg.Name, cfg.Log)
	logger.SetDefault(log)

	s, err := parsing.ParseService(&cfg, nil, log)
	if err != nil {
		return err
	}
	outcome := s.RunOnce()
	fmt.Fprintln(c.App.Writer, outcome)
	if outcome.Err != nil {
		return cli.Exit(outcome.Err.Error(), 1)
	}
	return nil
}

func configAction(c *cli.Context) error {
	source, err := newConfigSource(c)
	if err != nil {
		return err
	}
	cfg, err := source.Load()
	if err != nil {
		return err
	}
	return cfg.Write(c.App.Writer, c.String("format"))
}
