package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"greenledger/backend/client"
	"greenledger/backend/logger"
	"greenledger/backend/wizard"
)

func main() {
	app := &cli.App{
		Name:  "greenledger",
		Usage: "Join the waitlist or connect a cloud account from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the GreenLedger intake API",
				Value:   "http://localhost:8080",
				EnvVars: []string{"API_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: client.DefaultTimeout,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "waitlist",
				Usage: "Join the GreenLedger waitlist",
				Action: func(c *cli.Context) error {
					api, lggr, err := setup(c)
					if err != nil {
						return err
					}
					defer lggr.Sync()
					ctrl := wizard.NewWaitlistController(api, printNotice, lggr.Named("waitlist"))
					return runWaitlist(c.Context, ctrl)
				},
			},
			{
				Name:  "connect",
				Usage: "Connect an AWS, GCP or Azure account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "with-payment",
						Usage: "Start with the payment step",
					},
					&cli.DurationFlag{
						Name:    "payment-delay",
						Usage:   "Simulated payment processing time",
						Value:   wizard.DefaultPaymentDelay,
						EnvVars: []string{"PAYMENT_DELAY"},
					},
				},
				Action: func(c *cli.Context) error {
					api, lggr, err := setup(c)
					if err != nil {
						return err
					}
					defer lggr.Sync()
					variant := wizard.TwoStep
					if c.Bool("with-payment") {
						variant = wizard.WithPayment
					}
					ctrl := wizard.NewController(variant, api,
						wizard.WithPaymentDelay(c.Duration("payment-delay")),
						wizard.WithNotify(printNotice),
						wizard.WithLogger(lggr.Named("connect")),
					)
					return runConnect(c.Context, ctrl)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*client.Client, logger.Logger, error) {
	lggr, err := logger.New(c.String("log-level"))
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return client.New(c.String("api-url"), c.Duration("timeout")), lggr, nil
}

func printNotice(n wizard.Notice) {
	prefix := "OK"
	if n.Failure {
		prefix = "FAILED"
	}
	fmt.Printf("\n[%s] %s\n\n", prefix, n.Message)
}
