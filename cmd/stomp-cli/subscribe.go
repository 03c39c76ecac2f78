package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/distribution/go-stomp/client"
	"github.com/distribution/go-stomp/frame"
)

var ackMode string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <destination>",
	Short: "subscribe to a destination and print delivered messages",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		destination := args[0]

		conn := dial()
		defer conn.Disconnect()

		err := conn.Subscribe(destination, clientSubscribeOptions())
		if err != nil {
			fatalf("stomp-cli: subscribe to %s: %v", destination, err)
		}

		conn.RegisterCallback(destination, func(f *frame.Frame) {
			fmt.Printf("message-id=%s body=%q\n", messageID(f), string(f.Body))
		})

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	},
}

func init() {
	subscribeCmd.Flags().StringVar(&ackMode, "ack", "auto", "ack mode: auto, client, or client-individual")
}

func clientSubscribeOptions() client.SubscribeOptions {
	return client.SubscribeOptions{AckMode: ackMode}
}

func messageID(f *frame.Frame) string {
	if id, ok := f.Header.Get("message-id"); ok {
		return id
	}
	return ""
}
