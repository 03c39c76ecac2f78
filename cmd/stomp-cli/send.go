package main

import (
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <destination> <body>",
	Short: "send a single message to a destination",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		destination, body := args[0], args[1]

		conn := dial()
		defer conn.Disconnect()

		if err := conn.Send(destination, []byte(body), nil); err != nil {
			fatalf("stomp-cli: send to %s: %v", destination, err)
		}
	},
}
