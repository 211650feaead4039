package main

import (
	"context"
	"flag"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"vitehub/internal/assetrpc"
)

func handleRPC(ctx context.Context, addr, sub string, args []string) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("grpc dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client := assetrpc.NewClient(conn)

	switch sub {
	case "payload":
		fs := flag.NewFlagSet("rpc payload", flag.ExitOnError)
		entry := fs.String("entry", "", "entry key (defaults to the configured one)")
		_ = fs.Parse(args)

		resp, err := client.GetPayload(ctx, &assetrpc.GetPayloadRequest{Entry: *entry})
		if err != nil {
			log.Fatalf("GetPayload: %v", err)
		}
		printJSON(resp.Payload)
	case "entry":
		fs := flag.NewFlagSet("rpc entry", flag.ExitOnError)
		key := fs.String("key", "", "manifest key")
		_ = fs.Parse(args)

		resp, err := client.ResolveEntry(ctx, &assetrpc.ResolveEntryRequest{Key: *key})
		if err != nil {
			log.Fatalf("ResolveEntry: %v", err)
		}
		printJSON(resp.Entry)
	case "entries":
		resp, err := client.ListEntries(ctx, &assetrpc.ListEntriesRequest{})
		if err != nil {
			log.Fatalf("ListEntries: %v", err)
		}
		printJSON(resp.List)
	default:
		log.Fatal("usage: vitehub rpc <payload|entry|entries>")
	}
}
