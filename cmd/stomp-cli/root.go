// Package main implements stomp-cli, a small command-line client for
// exercising a STOMP broker: connect, subscribe and print messages, or
// send one.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distribution/go-stomp/client"
)

var (
	addr     string
	login    string
	passcode string
	host     string
	timeout  time.Duration
)

// RootCmd is the main command for the stomp-cli binary.
var RootCmd = &cobra.Command{
	Use:   "stomp-cli",
	Short: "stomp-cli",
	Long:  "stomp-cli connects to a STOMP broker and subscribes to or sends on a destination",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:61613", "broker address, host:port")
	RootCmd.PersistentFlags().StringVar(&login, "login", "", "STOMP login")
	RootCmd.PersistentFlags().StringVar(&passcode, "passcode", "", "STOMP passcode")
	RootCmd.PersistentFlags().StringVar(&host, "host", "", "STOMP virtual host")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout")

	RootCmd.AddCommand(subscribeCmd)
	RootCmd.AddCommand(sendCmd)
}

func dialOpts() []client.Option {
	return []client.Option{
		client.WithLogin(login),
		client.WithPasscode(passcode),
		client.WithHost(host),
		client.WithTimeout(timeout),
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func dial() *client.Conn {
	conn, err := client.Dial(context.Background(), addr, dialOpts()...)
	if err != nil {
		fatalf("stomp-cli: connect to %s: %v", addr, err)
	}
	return conn
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("stomp-cli: command failed")
		os.Exit(1)
	}
}
