package assetrpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vitehub/internal/frontend"
	"vitehub/pkg/manifest"
	"vitehub/pkg/models"
)

type Server struct {
	Frontend *frontend.Frontend
}

func NewServer(f *frontend.Frontend) *Server {
	return &Server{Frontend: f}
}

func (s *Server) GetPayload(ctx context.Context, req *GetPayloadRequest) (*GetPayloadResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	entry := strings.TrimSpace(req.Entry)
	if entry == "" {
		entry = s.Frontend.Entry
	}

	p, err := s.Frontend.Payload(ctx, entry)
	if err != nil {
		if errors.Is(err, manifest.ErrEntryNotFound) {
			return nil, status.Error(codes.NotFound, "entry not found")
		}
		return nil, status.Error(codes.Internal, "resolve failed")
	}
	return &GetPayloadResponse{Payload: models.FromPayload(entry, p)}, nil
}

func (s *Server) ResolveEntry(ctx context.Context, req *ResolveEntryRequest) (*ResolveEntryResponse, error) {
	if req == nil || strings.TrimSpace(req.Key) == "" {
		return nil, status.Error(codes.InvalidArgument, "key required")
	}
	key := strings.TrimSpace(req.Key)

	m, err := s.Frontend.Manifest()
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, "no manifest in dev mode")
	}
	e, ok := m.Get(key)
	if !ok {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &ResolveEntryResponse{Entry: models.FromEntry(m, key, e)}, nil
}

func (s *Server) ListEntries(ctx context.Context, _ *ListEntriesRequest) (*ListEntriesResponse, error) {
	m, err := s.Frontend.Manifest()
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, "no manifest in dev mode")
	}
	return &ListEntriesResponse{List: models.FromManifest(m)}, nil
}
