package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"vitehub/internal/assetrpc"
	"vitehub/internal/frontend"
	"vitehub/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := frontend.New(ctx, cfg, log.Default())
	if err != nil {
		log.Fatalf("frontend setup failed: %v", err)
	}
	go func() {
		if err := f.Watch(ctx); err != nil {
			log.Printf("[vite] watch stopped: %v", err)
		}
	}()

	grpcCfg := utils.LoadGrpcConfig()
	listener, err := net.Listen("tcp", grpcCfg.Addr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	grpcServer := grpc.NewServer()
	assetrpc.RegisterAssetServiceServer(grpcServer, assetrpc.NewServer(f))

	go func() {
		<-ctx.Done()
		log.Println("shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	log.Printf("gRPC server listening on %s", grpcCfg.Addr)
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalf("grpc server stopped: %v", err)
	}
}
