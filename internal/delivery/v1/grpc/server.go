package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"google.golang.org/grpc"
)

// запас на служебные поля сообщения сверх самого изображения
const messageOverhead = 1 << 10

type GRPCServer struct {
	server        *grpc.Server
	cfg           *cfg.GRPCConfig
	logger        logger.Logger
	maxUploadSize int64
}

func NewGRPCServer(cfg *cfg.GRPCConfig, maxUploadSize int64, logger logger.Logger) *GRPCServer {
	return &GRPCServer{
		server:        grpc.NewServer(grpc.MaxRecvMsgSize(int(maxUploadSize) + messageOverhead)),
		cfg:           cfg,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

func (s *GRPCServer) RegisterServices(processor usecase.ImageProcessorUC, results usecase.SearchResultUC) {
	s.server.RegisterService(&SearchServiceDesc, NewSearchService(processor, results, s.logger, s.maxUploadSize))
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
